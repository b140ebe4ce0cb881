//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/hayeah/tessera"
)

func BuildApp(ctx context.Context, cfg *tessera.Config) (*tessera.App, func(), error) {
	wire.Build(tessera.Wires)
	return nil, nil, nil
}
