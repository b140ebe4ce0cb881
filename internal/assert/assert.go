// Package assert extends testify assertions with fixture comparisons.
package assert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert is a wrapper around assert.Assertions and testing.T
type Assert struct {
	*assert.Assertions
	T *testing.T
}

// New creates a new Assert object
func New(t *testing.T) *Assert {
	return &Assert{
		Assertions: assert.New(t),
		T:          t,
	}
}

// EqualToJSONFixture compares result, marshaled as indented JSON, with
// fixtures/<TestName>_<fixtureName>.json. With GEN_FIXTURE=true the fixture
// is written instead.
func (a *Assert) EqualToJSONFixture(fixtureName string, result any) {
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	a.NoError(err, "Failed to marshal result to JSON")
	a.equalToFixture(fixtureName+".json", string(resultJSON))
}

// EqualToFixture compares text with fixtures/<TestName>_<fixtureName>.
func (a *Assert) EqualToFixture(fixtureName, text string) {
	a.equalToFixture(fixtureName, text)
}

func (a *Assert) equalToFixture(fileName, actual string) {
	fixturePath := filepath.Join("fixtures", fmt.Sprintf("%s_%s", a.T.Name(), fileName))

	if os.Getenv("GEN_FIXTURE") == "true" {
		a.NoError(os.MkdirAll(filepath.Dir(fixturePath), 0755), "Failed to create fixture directory")
		a.NoError(os.WriteFile(fixturePath, []byte(actual), 0644), "Failed to write fixture file")
		return
	}

	expected, err := os.ReadFile(fixturePath)
	a.NoError(err, "Failed to read fixture file")
	a.Equal(string(expected), actual, "Result does not match fixture")
}
