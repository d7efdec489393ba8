package soa

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nested example modules must resolve this module from the working tree.
func TestExampleModules_ReplaceRoot(t *testing.T) {
	root, err := os.ReadFile("go.mod")
	require.NoError(t, err)
	modulePath := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(string(root), "\n", 2)[0], "module"))
	require.Equal(t, "github.com/hupe1980/soa", modulePath)

	for _, path := range []string{"examples/observability/go.mod"} {
		t.Run(path, func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			mod := string(data)

			assert.Contains(t, mod, "replace "+modulePath+" => ../../")
			assert.Contains(t, mod, "\t"+modulePath+" v0.0.0\n")
			assert.NotContains(t, mod, "vecgo")
		})
	}
}
