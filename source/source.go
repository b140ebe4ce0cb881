// Package source reads template text named on the command line: a file,
// stdin ("-"), the clipboard, an HTTP URL or literal text ("text:...").
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// Loader reads one source.
type Loader interface {
	Load(ctx context.Context) (string, error)
}

// Factory creates a loader for an argument. It receives the argument
// unchanged, including its scheme prefix.
type Factory func(arg string) (Loader, error)

var schemes = map[string]Factory{}

// Register installs a factory under one or more scheme names.
func Register(f Factory, names ...string) {
	for _, n := range names {
		schemes[strings.ToLower(n)] = f
	}
}

func init() {
	Register(func(string) (Loader, error) { return &Clipboard{}, nil }, "clipboard", "paste")
	Register(func(arg string) (Loader, error) { return &Literal{Text: afterScheme(arg)}, nil }, "text", "literal")
	Register(func(arg string) (Loader, error) { return &File{Path: expandHome(afterScheme(arg))}, nil }, "file")
	Register(func(arg string) (Loader, error) { return &HTTP{URL: arg}, nil }, "http", "https")
}

func afterScheme(arg string) string {
	if i := strings.IndexRune(arg, ':'); i >= 0 {
		return arg[i+1:]
	}
	return arg
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Stdin reads all of Reader, or os.Stdin when nil.
type Stdin struct {
	Reader io.Reader
}

func (l *Stdin) Load(ctx context.Context) (string, error) {
	r := l.Reader
	if r == nil {
		r = os.Stdin
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Clipboard reads the system clipboard.
type Clipboard struct{}

func (l *Clipboard) Load(ctx context.Context) (string, error) {
	return clipboard.ReadAll()
}

// Literal returns Text.
type Literal struct{ Text string }

func (l *Literal) Load(ctx context.Context) (string, error) { return l.Text, nil }

// File reads a file.
type File struct{ Path string }

func (l *File) Load(ctx context.Context) (string, error) {
	b, err := os.ReadFile(l.Path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HTTP fetches a URL with GET.
type HTTP struct{ URL string }

func (l *HTTP) Load(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("HTTP request failed: " + resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Pick returns the loader for arg:
//
//	"-"               stdin
//	"<scheme>:rest"   a registered scheme
//	"clipboard"       a bare scheme name
//	anything else     an existing file, "~/" expanded
func Pick(arg string) (Loader, error) {
	if arg == "-" {
		return &Stdin{}, nil
	}
	if i := strings.IndexRune(arg, ':'); i > 0 {
		if f, ok := schemes[strings.ToLower(arg[:i])]; ok {
			return f(arg)
		}
	}
	if f, ok := schemes[strings.ToLower(arg)]; ok {
		return f("")
	}
	path := expandHome(arg)
	if _, err := os.Stat(path); err == nil {
		return &File{Path: path}, nil
	}
	return nil, fmt.Errorf("unrecognised template source: %q", arg)
}

// Load reads one source.
func Load(ctx context.Context, arg string) (string, error) {
	l, err := Pick(arg)
	if err != nil {
		return "", err
	}
	return l.Load(ctx)
}

// LoadAll reads every source and joins them with a blank line.
func LoadAll(ctx context.Context, args []string) (string, error) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		text, err := Load(ctx, arg)
		if err != nil {
			return "", fmt.Errorf("source %s: %w", arg, err)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}
