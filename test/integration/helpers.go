package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/danieljhkim/kitforge/internal/clock"
	"github.com/danieljhkim/kitforge/internal/engine"
	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/gitx"
	"github.com/danieljhkim/kitforge/internal/hash"
	"github.com/danieljhkim/kitforge/internal/vars"
	"github.com/danieljhkim/kitforge/internal/verify"
)

// harness wires a full engine against real temp directories, with the
// nondeterministic dependencies (time, random values, HTTP probes)
// replaced by fakes so runs are reproducible.
type harness struct {
	eng        *engine.Engine
	catalogDir string
	treeDir    string
	clock      *clock.FakeClock
	prober     *verify.FakeProber
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		catalogDir: t.TempDir(),
		treeDir:    t.TempDir(),
		clock:      clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		prober:     verify.NewFakeProber(),
	}
	h.eng = engine.New(
		fsops.NewRealFS(),
		hash.NewSHA256Hasher(),
		h.clock,
		vars.NewFakeGenerator(),
		h.prober,
		gitx.NewFakeRepo(h.treeDir),
	)
	return h
}

// freshTree points the harness at a new empty tree, rebuilding the
// engine so the fake generator starts from scratch as well.
func (h *harness) freshTree(t *testing.T) {
	t.Helper()
	h.treeDir = t.TempDir()
	h.eng = engine.New(
		fsops.NewRealFS(),
		hash.NewSHA256Hasher(),
		h.clock,
		vars.NewFakeGenerator(),
		h.prober,
		gitx.NewFakeRepo(h.treeDir),
	)
}

// writeManifest drops one raw kit document into the catalog.
func (h *harness) writeManifest(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(h.catalogDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest %s: %v", name, err)
	}
}

// apply runs one apply request against the harness tree.
func (h *harness) apply(t *testing.T, strict bool, refs ...string) (*engine.ApplyResult, error) {
	t.Helper()
	return h.eng.Apply(context.Background(), &engine.ApplyRequest{
		CatalogDir: h.catalogDir,
		TreeDir:    h.treeDir,
		Refs:       refs,
		Strict:     strict,
	})
}

func (h *harness) readTree(t *testing.T, relPath string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.treeDir, relPath))
	if err != nil {
		t.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

func (h *harness) treeHas(t *testing.T, relPath string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(h.treeDir, relPath))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("failed to stat %s: %v", relPath, err)
	return false
}

// treeDigest walks the tree and digests every file path and content.
// The state file is included: the fake clock keeps its timestamps
// deterministic, so identical runs digest identically.
func (h *harness) treeDigest(t *testing.T) string {
	t.Helper()
	sum := sha256.New()

	var paths []string
	err := filepath.WalkDir(h.treeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk tree: %v", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		rel, relErr := filepath.Rel(h.treeDir, path)
		if relErr != nil {
			t.Fatalf("failed to relativize %s: %v", path, relErr)
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			t.Fatalf("failed to read %s: %v", path, readErr)
		}
		sum.Write([]byte(rel))
		sum.Write([]byte{0})
		sum.Write(data)
		sum.Write([]byte{0})
	}
	return hex.EncodeToString(sum.Sum(nil))
}
