package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

type fixture struct {
	id      string
	version int
	isBase  bool
	tags    []string
	prereqs []string
}

func (f fixture) doc() string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "id: %s\nalias: %s\ntype: kit\nversion: %d\n", f.id, f.id, f.version)
	if f.isBase {
		sb.WriteString("is_base: true\n")
	}
	if len(f.tags) > 0 {
		fmt.Fprintf(&sb, "tags: [%s]\n", strings.Join(f.tags, ", "))
	}
	sb.WriteString("---\n")
	if len(f.prereqs) > 0 {
		sb.WriteString("\n## Prerequisites\n\n")
		for _, p := range f.prereqs {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	return sb.String()
}

func writeManifest(t *testing.T, dir, rel, doc string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "auth/foundation-auth.md", fixture{id: "foundation-auth", version: 1, isBase: true, tags: []string{"auth"}}.doc())
	writeManifest(t, dir, "auth/foundation-auth-v2.md", fixture{id: "foundation-auth", version: 2, isBase: true, tags: []string{"auth"}}.doc())
	writeManifest(t, dir, "payments/stripe-checkout.md", fixture{id: "stripe-checkout", version: 1, prereqs: []string{"foundation-auth"}}.doc())

	cat, err := Load(fsops.NewRealFS(), dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if want := []string{"foundation-auth", "stripe-checkout"}; !reflect.DeepEqual(cat.IDs(), want) {
		t.Errorf("IDs = %v, want %v", cat.IDs(), want)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(cat.Versions("foundation-auth"), want) {
		t.Errorf("Versions = %v, want %v", cat.Versions("foundation-auth"), want)
	}

	latest, ok := cat.Latest("foundation-auth")
	if !ok || latest.Version != 2 {
		t.Errorf("Latest = %+v, want version 2", latest)
	}
	v1, ok := cat.Get("foundation-auth", 1)
	if !ok || v1.Version != 1 {
		t.Errorf("Get v1 = %+v, want version 1", v1)
	}
	if _, ok := cat.Get("foundation-auth", 3); ok {
		t.Error("Get returned a kit for a version that does not exist")
	}
	if _, ok := cat.Latest("unknown"); ok {
		t.Error("Latest returned a kit for an unknown id")
	}
}

func TestLoad_EmptyCatalog(t *testing.T) {
	cat, err := Load(fsops.NewRealFS(), t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.IDs()) != 0 {
		t.Errorf("IDs = %v, want empty", cat.IDs())
	}
}

func TestLoad_GathersMalformedManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "good.md", fixture{id: "good-kit", version: 1}.doc())
	writeManifest(t, dir, "no-id.md", "---\nalias: No ID\ntype: kit\nversion: 1\n---\n")
	writeManifest(t, dir, "no-fence.md", "## End State\n\n- orphan body\n")

	_, err := Load(fsops.NewRealFS(), dir)
	if err == nil {
		t.Fatal("Load succeeded with malformed manifests")
	}

	var malformed *manifest.MalformedManifestError
	if !errors.As(err, &malformed) {
		t.Fatalf("error chain missing MalformedManifestError: %v", err)
	}
	for _, path := range []string{"no-id.md", "no-fence.md"} {
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error missing offender %s: %v", path, err)
		}
	}
	if strings.Contains(err.Error(), "good.md") {
		t.Errorf("error blames a well-formed manifest: %v", err)
	}
}

func TestLoad_DuplicateIdError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a/auth.md", fixture{id: "foundation-auth", version: 1}.doc())
	writeManifest(t, dir, "b/auth.md", fixture{id: "foundation-auth", version: 1}.doc())
	writeManifest(t, dir, "c/auth.md", fixture{id: "foundation-auth", version: 2}.doc())

	_, err := Load(fsops.NewRealFS(), dir)
	var dup *DuplicateIdError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want *DuplicateIdError", err)
	}
	if len(dup.Duplicates) != 1 {
		t.Fatalf("Duplicates = %+v, want exactly the v1 pair", dup.Duplicates)
	}
	d := dup.Duplicates[0]
	if d.ID != "foundation-auth" || d.Version != 1 {
		t.Errorf("Duplicate = %+v, want foundation-auth v1", d)
	}
	if want := []string{"a/auth.md", "b/auth.md"}; !reflect.DeepEqual(d.Paths, want) {
		t.Errorf("Paths = %v, want %v", d.Paths, want)
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		raw     string
		want    Ref
		wantErr bool
	}{
		{raw: "foundation-auth", want: Ref{ID: "foundation-auth"}},
		{raw: "foundation-auth@2", want: Ref{ID: "foundation-auth", Version: 2}},
		{raw: "foundation-auth@0", wantErr: true},
		{raw: "foundation-auth@-1", wantErr: true},
		{raw: "foundation-auth@latest", wantErr: true},
		{raw: "foundation-auth@", wantErr: true},
		{raw: "@2", wantErr: true},
		{raw: "Foundation-Auth", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRef(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRef(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}

	t.Run("String round-trips", func(t *testing.T) {
		for _, raw := range []string{"foundation-auth", "foundation-auth@2"} {
			ref, err := ParseRef(raw)
			if err != nil {
				t.Fatalf("ParseRef(%q): %v", raw, err)
			}
			if ref.String() != raw {
				t.Errorf("String() = %q, want %q", ref.String(), raw)
			}
		}
	})
}

func TestParseRefs_GathersBadReferences(t *testing.T) {
	_, err := ParseRefs([]string{"good-kit", "BAD", "also@bad"})
	if err == nil {
		t.Fatal("ParseRefs accepted invalid references")
	}
	for _, frag := range []string{`"BAD"`, `"also@bad"`} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("error missing %s: %v", frag, err)
		}
	}
}

func loadTestCatalog(t *testing.T, fixtures ...fixture) *Catalog {
	t.Helper()
	dir := t.TempDir()
	for i, f := range fixtures {
		writeManifest(t, dir, fmt.Sprintf("%s-%d.md", f.id, i), f.doc())
	}
	cat, err := Load(fsops.NewRealFS(), dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cat
}

func TestSnapshot_VersionSelection(t *testing.T) {
	cat := loadTestCatalog(t,
		fixture{id: "foundation-auth", version: 1},
		fixture{id: "foundation-auth", version: 2},
		fixture{id: "stripe-checkout", version: 1},
	)

	t.Run("latest wins by default", func(t *testing.T) {
		snap, err := cat.Snapshot(nil)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		kit, ok := snap.Get("foundation-auth")
		if !ok || kit.Version != 2 {
			t.Errorf("visible foundation-auth = %+v, want version 2", kit)
		}
		if snap.Len() != 2 {
			t.Errorf("Len = %d, want 2", snap.Len())
		}
	})

	t.Run("pin overrides latest", func(t *testing.T) {
		snap, err := cat.Snapshot([]Ref{{ID: "foundation-auth", Version: 1}})
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		kit, ok := snap.Get("foundation-auth")
		if !ok || kit.Version != 1 {
			t.Errorf("visible foundation-auth = %+v, want pinned version 1", kit)
		}
	})

	t.Run("pin to absent version drops the id", func(t *testing.T) {
		snap, err := cat.Snapshot([]Ref{{ID: "foundation-auth", Version: 9}})
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if _, ok := snap.Get("foundation-auth"); ok {
			t.Error("snapshot carries a version the catalog does not have")
		}
	})

	t.Run("conflicting pins fail", func(t *testing.T) {
		_, err := cat.Snapshot([]Ref{
			{ID: "foundation-auth", Version: 1},
			{ID: "foundation-auth", Version: 2},
		})
		if err == nil || !strings.Contains(err.Error(), "pinned to both") {
			t.Errorf("error = %v, want conflicting pin report", err)
		}
	})
}

func TestSnapshot_ClassifiesPrerequisites(t *testing.T) {
	cat := loadTestCatalog(t,
		fixture{id: "env-loader", version: 1, tags: []string{"config"}},
		fixture{id: "foundation-auth", version: 1, isBase: true, tags: []string{"auth"},
			prereqs: []string{"env-loader", "config", "A web framework with middleware support"}},
		fixture{id: "stripe-checkout", version: 1,
			prereqs: []string{"foundation-auth", "stripe-checkout"}},
	)

	snap, err := cat.Snapshot(nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	auth, _ := snap.Get("foundation-auth")
	if want := []string{"env-loader"}; !reflect.DeepEqual(auth.HardDeps, want) {
		t.Errorf("HardDeps = %v, want %v", auth.HardDeps, want)
	}
	if want := []string{"config"}; !reflect.DeepEqual(auth.SoftTags, want) {
		t.Errorf("SoftTags = %v, want %v", auth.SoftTags, want)
	}
	if want := []string{"A web framework with middleware support"}; !reflect.DeepEqual(auth.DepNotes, want) {
		t.Errorf("DepNotes = %v, want %v", auth.DepNotes, want)
	}

	stripe, _ := snap.Get("stripe-checkout")
	if want := []string{"foundation-auth"}; !reflect.DeepEqual(stripe.HardDeps, want) {
		t.Errorf("HardDeps = %v, want %v", stripe.HardDeps, want)
	}
	if want := []string{"stripe-checkout"}; !reflect.DeepEqual(stripe.DepNotes, want) {
		t.Errorf("self reference should be a note, got DepNotes = %v", stripe.DepNotes)
	}
}

func TestSnapshot_CopiesKits(t *testing.T) {
	cat := loadTestCatalog(t,
		fixture{id: "env-loader", version: 1},
		fixture{id: "foundation-auth", version: 1, prereqs: []string{"env-loader"}},
	)

	first, err := cat.Snapshot(nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	kit, _ := first.Get("foundation-auth")
	kit.HardDeps = append(kit.HardDeps, "tampered")

	second, err := cat.Snapshot(nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	fresh, _ := second.Get("foundation-auth")
	if want := []string{"env-loader"}; !reflect.DeepEqual(fresh.HardDeps, want) {
		t.Errorf("HardDeps = %v, want %v; snapshots must not share kit records", fresh.HardDeps, want)
	}

	original, _ := cat.Get("foundation-auth", 1)
	if original.HardDeps != nil {
		t.Errorf("catalog kit mutated through snapshot: %v", original.HardDeps)
	}
}

func TestSnapshot_KitsSorted(t *testing.T) {
	cat := loadTestCatalog(t,
		fixture{id: "zeta-kit", version: 1},
		fixture{id: "alpha-kit", version: 1},
		fixture{id: "mid-kit", version: 1},
	)
	snap, err := cat.Snapshot(nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	var ids []string
	for _, kit := range snap.Kits() {
		ids = append(ids, kit.ID)
	}
	if want := []string{"alpha-kit", "mid-kit", "zeta-kit"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Kits order = %v, want %v", ids, want)
	}
}
