package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/kitforge/internal/clock"
	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/gitx"
	"github.com/danieljhkim/kitforge/internal/hash"
	"github.com/danieljhkim/kitforge/internal/vars"
	"github.com/danieljhkim/kitforge/internal/verify"
)

type testFile struct {
	heading string
	content string
}

type kitSpec struct {
	id       string
	version  int
	isBase   bool
	prereqs  []string
	defaults map[string]string
	secrets  []string
	files    []testFile
	criteria []string
}

func writeKitManifest(t *testing.T, dir string, spec kitSpec) {
	t.Helper()
	version := spec.version
	if version == 0 {
		version = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "---\nid: %s\nalias: %s\ntype: kit\nversion: %d\n", spec.id, spec.id, version)
	if spec.isBase {
		sb.WriteString("is_base: true\n")
	}
	if len(spec.defaults) > 0 || len(spec.secrets) > 0 {
		sb.WriteString("placeholders:\n")
		for name, def := range spec.defaults {
			fmt.Fprintf(&sb, "  %s:\n    default: %s\n", name, def)
		}
		for _, name := range spec.secrets {
			fmt.Fprintf(&sb, "  %s:\n    generate: secret\n", name)
		}
	}
	sb.WriteString("---\n")

	if len(spec.prereqs) > 0 {
		sb.WriteString("\n## Prerequisites\n\n")
		for _, p := range spec.prereqs {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if len(spec.files) > 0 {
		sb.WriteString("\n## File Structure\n")
		for _, f := range spec.files {
			fmt.Fprintf(&sb, "\n### %s\n\n~~~\n%s~~~\n", f.heading, f.content)
		}
	}
	if len(spec.criteria) > 0 {
		sb.WriteString("\n## Verification Criteria\n\n")
		for _, c := range spec.criteria {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}

	name := fmt.Sprintf("%s.md", spec.id)
	if spec.version > 1 {
		name = fmt.Sprintf("%s-v%d.md", spec.id, spec.version)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0644); err != nil {
		t.Fatalf("failed to write manifest %s: %v", spec.id, err)
	}
}

type testEnv struct {
	eng        *Engine
	catalogDir string
	treeDir    string
	clock      *clock.FakeClock
	prober     *verify.FakeProber
	repo       *gitx.FakeRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		catalogDir: t.TempDir(),
		treeDir:    t.TempDir(),
		clock:      clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		prober:     verify.NewFakeProber(),
	}
	env.repo = gitx.NewFakeRepo(env.treeDir)
	env.eng = New(fsops.NewRealFS(), hash.NewSHA256Hasher(), env.clock, vars.NewFakeGenerator(), env.prober, env.repo)
	return env
}

// seedCatalog writes the canonical two-kit fixture: a base env-loader
// and a foundation-auth that depends on it, sharing an appendable
// .gitignore.
func (env *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	writeKitManifest(t, env.catalogDir, kitSpec{
		id:       "env-loader",
		isBase:   true,
		defaults: map[string]string{"APP_NAME": "my-app"},
		files: []testFile{
			{heading: ".env.example", content: "APP_NAME={{APP_NAME}}\n"},
			{heading: ".gitignore (appendable)", content: ".env\n"},
		},
	})
	writeKitManifest(t, env.catalogDir, kitSpec{
		id:      "foundation-auth",
		prereqs: []string{"env-loader"},
		secrets: []string{"SESSION_SECRET"},
		files: []testFile{
			{heading: "src/auth/session.ts", content: "export const secret = \"{{SESSION_SECRET}}\";\n"},
			{heading: ".gitignore (appendable)", content: ".session-store\n"},
		},
		criteria: []string{"file: src/auth/session.ts"},
	})
}

func (env *testEnv) readTreeFile(t *testing.T, relPath string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.treeDir, relPath))
	if err != nil {
		t.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

func (env *testEnv) treeFileExists(t *testing.T, relPath string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(env.treeDir, relPath))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("failed to stat %s: %v", relPath, err)
	return false
}
