package cli

import (
	"encoding/json"
	"os"

	"github.com/danieljhkim/kitforge/internal/clock"
	"github.com/danieljhkim/kitforge/internal/config"
	"github.com/danieljhkim/kitforge/internal/engine"
	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/gitx"
	"github.com/danieljhkim/kitforge/internal/hash"
	"github.com/danieljhkim/kitforge/internal/vars"
	"github.com/danieljhkim/kitforge/internal/verify"
)

// newEngine creates a new engine with real implementations of all
// dependencies. Built per invocation so the verify timeout flag is
// wired into the HTTP prober at construction time.
func newEngine() *engine.Engine {
	fs := fsops.NewRealFS()
	hasher := hash.NewSHA256Hasher()
	clk := &clock.RealClock{}
	gen := vars.NewRealGenerator()
	prober := verify.NewHTTPProber(applyVerifyTimeout)
	gitRepo := gitx.NewRealRepo()

	return engine.New(fs, hasher, clk, gen, prober, gitRepo)
}

// enginePaths resolves the catalog and tree locations for one command
// invocation, with flag > environment > default precedence.
func enginePaths() (*config.Paths, error) {
	return config.Resolve(catalogFlag, treeFlag)
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
