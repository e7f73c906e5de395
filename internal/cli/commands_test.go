package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestCatalog creates a catalog directory with a base kit and a
// dependent kit, returning the directory path.
func writeTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifests := map[string]string{
		"env-loader.md": `---
id: env-loader
alias: Environment Loader
type: kit
is_base: true
version: 1
tags: [config]
---

## End State

- Environment variables load from .env

## File Structure

### .env.example

~~~
APP_NAME={{APP_NAME}}
~~~
`,
		"foundation-auth.md": `---
id: foundation-auth
alias: Foundation Auth
type: kit
version: 1
tags: [auth]
placeholders:
  SESSION_SECRET:
    generate: secret
---

## Prerequisites

- env-loader

## File Structure

### src/auth/session.ts

~~~
export const secret = "{{SESSION_SECRET}}";
~~~

## Verification Criteria

- file: src/auth/session.ts
`,
	}
	for name, content := range manifests {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// runCommand resets global flag state, executes the root command with
// args, and returns the captured stdout along with the command error.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	catalogFlag = ""
	treeFlag = "."
	jsonOutput = false
	noColor = true

	// Command flags accumulate across Execute calls; --var in
	// particular is a string array that only ever appends.
	applyStrict = false
	applyDryRun = false
	applyVars = nil
	applyValuesFile = ""
	planStrict = false

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	rootCmd.SetArgs(args)
	var cmdOut bytes.Buffer
	rootCmd.SetOut(&cmdOut)
	rootCmd.SetErr(&cmdOut)
	execErr := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String() + cmdOut.String(), execErr
}

func TestListCommand_JSON(t *testing.T) {
	catalog := writeTestCatalog(t)

	output, err := runCommand(t, "list", "--catalog", catalog, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result struct {
		Kits []struct {
			ID      string
			Version int
			IsBase  bool
		}
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v, output: %q", err, output)
	}
	if len(result.Kits) != 2 {
		t.Fatalf("got %d kits, want 2", len(result.Kits))
	}
	if result.Kits[0].ID != "env-loader" || !result.Kits[0].IsBase {
		t.Errorf("first kit = %+v, want base env-loader", result.Kits[0])
	}
	if result.Kits[1].ID != "foundation-auth" {
		t.Errorf("second kit = %+v, want foundation-auth", result.Kits[1])
	}
}

func TestListCommand_EmptyCatalog(t *testing.T) {
	_, err := runCommand(t, "list", "--catalog", t.TempDir())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestValidateCommand_ValidCatalog(t *testing.T) {
	catalog := writeTestCatalog(t)

	_, err := runCommand(t, "validate", "--catalog", catalog)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestValidateCommand_MalformedCatalog(t *testing.T) {
	dir := t.TempDir()
	broken := "---\nalias: No ID Here\ntype: kit\nversion: 0\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.md"), []byte(broken), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	_, err := runCommand(t, "validate", "--catalog", dir)
	if err == nil {
		t.Fatal("expected error for malformed catalog")
	}
	if !strings.Contains(err.Error(), "id") {
		t.Errorf("error = %v, expected missing id to be reported", err)
	}
	if got := ExitCode(err); got != ExitError {
		t.Errorf("ExitCode = %d, want %d", got, ExitError)
	}
}

func TestPlanCommand_JSON(t *testing.T) {
	catalog := writeTestCatalog(t)

	output, err := runCommand(t, "plan", "foundation-auth", "--catalog", catalog, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result struct {
		Plan struct {
			Kits         []struct{ ID string }
			AutoIncluded []string
		}
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v, output: %q", err, output)
	}
	if len(result.Plan.Kits) != 2 || result.Plan.Kits[0].ID != "env-loader" {
		t.Errorf("plan kits = %+v, want env-loader first", result.Plan.Kits)
	}
	if len(result.Plan.AutoIncluded) != 1 || result.Plan.AutoIncluded[0] != "env-loader" {
		t.Errorf("AutoIncluded = %v, want [env-loader]", result.Plan.AutoIncluded)
	}
}

func TestPlanCommand_StrictFailsOnMissingPrereq(t *testing.T) {
	catalog := writeTestCatalog(t)

	_, err := runCommand(t, "plan", "foundation-auth", "--catalog", catalog, "--strict")
	if err == nil {
		t.Fatal("expected error for strict plan with unrequested prerequisite")
	}
	if !strings.Contains(err.Error(), "env-loader") {
		t.Errorf("error = %v, expected env-loader to be named", err)
	}
}

func TestDescribeCommand(t *testing.T) {
	catalog := writeTestCatalog(t)

	output, err := runCommand(t, "describe", "foundation-auth", "--catalog", catalog, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result struct {
		Kit struct {
			ID           string
			Placeholders []string
		}
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v, output: %q", err, output)
	}
	if result.Kit.ID != "foundation-auth" {
		t.Errorf("kit id = %q, want foundation-auth", result.Kit.ID)
	}
	if len(result.Kit.Placeholders) != 1 || result.Kit.Placeholders[0] != "SESSION_SECRET" {
		t.Errorf("placeholders = %v, want [SESSION_SECRET]", result.Kit.Placeholders)
	}
}

func TestDescribeCommand_UnknownKit(t *testing.T) {
	catalog := writeTestCatalog(t)

	_, err := runCommand(t, "describe", "no-such-kit", "--catalog", catalog)
	if err == nil {
		t.Fatal("expected error for unknown kit")
	}
}

func TestApplyCommand_DryRunWritesNothing(t *testing.T) {
	catalog := writeTestCatalog(t)
	tree := t.TempDir()

	_, err := runCommand(t, "apply", "foundation-auth",
		"--catalog", catalog, "--tree", tree, "--dry-run", "--var", "APP_NAME=my-app")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	entries, readErr := os.ReadDir(tree)
	if readErr != nil {
		t.Fatalf("failed to read tree: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries, want none", len(entries))
	}
}

func TestApplyCommand_WritesTree(t *testing.T) {
	catalog := writeTestCatalog(t)
	tree := t.TempDir()

	_, err := runCommand(t, "apply", "foundation-auth",
		"--catalog", catalog, "--tree", tree, "--var", "APP_NAME=my-app")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, rel := range []string{".env.example", "src/auth/session.ts", ".kitforge/state.json"} {
		if _, statErr := os.Stat(filepath.Join(tree, rel)); statErr != nil {
			t.Errorf("expected %s in tree: %v", rel, statErr)
		}
	}
}

func TestApplyCommand_VarFlag(t *testing.T) {
	catalog := writeTestCatalog(t)
	tree := t.TempDir()

	_, err := runCommand(t, "apply", "env-loader",
		"--catalog", catalog, "--tree", tree, "--var", "APP_NAME=storefront")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, readErr := os.ReadFile(filepath.Join(tree, ".env.example"))
	if readErr != nil {
		t.Fatalf("failed to read .env.example: %v", readErr)
	}
	if got := string(data); got != "APP_NAME=storefront\n" {
		t.Errorf(".env.example = %q", got)
	}
}

func TestApplyCommand_MissingValueFails(t *testing.T) {
	catalog := writeTestCatalog(t)
	tree := t.TempDir()

	// env-loader's APP_NAME has no default, generator, or supplied value.
	_, err := runCommand(t, "apply", "env-loader", "--catalog", catalog, "--tree", tree)
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
	if !strings.Contains(err.Error(), "APP_NAME") {
		t.Errorf("error = %v, expected APP_NAME to be named", err)
	}
}

func TestApplyCommand_InvalidVarFlag(t *testing.T) {
	catalog := writeTestCatalog(t)

	_, err := runCommand(t, "apply", "env-loader", "--catalog", catalog, "--var", "not-a-pair")
	if err == nil {
		t.Fatal("expected error for malformed --var flag")
	}
}

func TestApplyCommand_RequiresArgs(t *testing.T) {
	_, err := runCommand(t, "apply")
	if err == nil {
		t.Fatal("expected error for apply with no kit ids")
	}
}

func TestCommandHelp(t *testing.T) {
	commands := []string{"apply", "plan", "list", "describe", "validate"}

	for _, cmd := range commands {
		t.Run(cmd, func(t *testing.T) {
			output, err := runCommand(t, cmd, "--help")
			if err != nil {
				t.Errorf("Execute() for %s --help error = %v", cmd, err)
			}
			if output == "" {
				t.Errorf("expected help output for %s, got empty", cmd)
			}
			if !strings.Contains(output, fmt.Sprintf("kitforge %s", cmd)) {
				t.Errorf("expected usage line for %s in help output", cmd)
			}
		})
	}
}
