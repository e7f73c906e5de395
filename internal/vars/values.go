// Package vars assembles placeholder values and expands {{TOKEN}}
// references in kit payloads.
//
// Value sources merge lowest to highest priority:
//
//  1. Kit-declared defaults
//  2. Values generated by earlier kits in the same plan run
//  3. The values file
//  4. --var flags
//
// Generated values are synthesized once and shared with later kits in
// the run, so two kits declaring the same generated token agree on its
// value. Nothing is persisted; a new run generates fresh values.
//
// Key concepts:
//   - Values: the per-run value sources, one instance per plan run
//   - Generator: secret/uuid synthesis, faked in tests
//   - Render: expansion of one kit's files and criteria, gathering
//     every unresolved token before failing
package vars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

// Values carries the value sources for one plan run.
type Values struct {
	fileVals  map[string]string
	flagVals  map[string]string
	generated map[string]string
	gen       Generator
}

// NewValues creates the value sources for one plan run.
func NewValues(fileVals, flagVals map[string]string, gen Generator) *Values {
	return &Values{
		fileVals:  fileVals,
		flagVals:  flagVals,
		generated: make(map[string]string),
		gen:       gen,
	}
}

// ForKit merges the value sources for one kit and synthesizes any
// generate-backed placeholder no higher-priority source covers.
// Synthesis walks placeholder names in sorted order so generated
// sequences are deterministic for a given plan.
func (v *Values) ForKit(kit *manifest.Kit) (map[string]string, error) {
	mapping := make(map[string]string)
	for name, spec := range kit.Specs {
		if spec.Default != "" {
			mapping[name] = spec.Default
		}
	}
	for name, value := range v.generated {
		mapping[name] = value
	}
	for name, value := range v.fileVals {
		mapping[name] = value
	}
	for name, value := range v.flagVals {
		mapping[name] = value
	}

	names := make([]string, 0, len(kit.Specs))
	for name := range kit.Specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec := kit.Specs[name]
		if spec.Generate == "" {
			continue
		}
		if _, ok := mapping[name]; ok {
			continue
		}
		value, err := v.synthesize(kit.ID, name, spec.Generate)
		if err != nil {
			return nil, err
		}
		mapping[name] = value
	}
	return mapping, nil
}

// Generated returns a copy of the values synthesized so far this run.
func (v *Values) Generated() map[string]string {
	out := make(map[string]string, len(v.generated))
	for name, value := range v.generated {
		out[name] = value
	}
	return out
}

func (v *Values) synthesize(kitID, name, kind string) (string, error) {
	var value string
	switch kind {
	case "secret":
		secret, err := v.gen.Secret()
		if err != nil {
			return "", fmt.Errorf("kit %s placeholder %s: %w", kitID, name, err)
		}
		value = secret
	case "uuid":
		value = v.gen.UUID()
	default:
		return "", fmt.Errorf("kit %s placeholder %s: unknown generator %q", kitID, name, kind)
	}
	v.generated[name] = value
	return value, nil
}

// ParseVarFlags parses repeated --var KEY=VALUE flags into a value map,
// gathering every malformed flag into one error. A repeated key keeps
// its last value.
func ParseVarFlags(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	var bad []string
	for _, flag := range flags {
		key, value, found := strings.Cut(flag, "=")
		if !found || key == "" {
			bad = append(bad, fmt.Sprintf("%q is not KEY=VALUE", flag))
			continue
		}
		if !manifest.TokenPattern.MatchString("{{" + key + "}}") {
			bad = append(bad, fmt.Sprintf("%q: invalid placeholder name %q", flag, key))
			continue
		}
		out[key] = value
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("invalid --var flags: %s", strings.Join(bad, "; "))
	}
	return out, nil
}

// LoadValuesFile reads a JSONC values file into a value map. Values
// must be scalars; numbers and booleans are kept in their literal
// spelling. Every offending entry is gathered before failing.
func LoadValuesFile(fs fsops.FS, path string) (map[string]string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid values file %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))
	var bad []string
	for name, value := range raw {
		if !manifest.TokenPattern.MatchString("{{" + name + "}}") {
			bad = append(bad, fmt.Sprintf("%s: not a valid placeholder name", name))
			continue
		}
		switch v := value.(type) {
		case string:
			out[name] = v
		case json.Number:
			out[name] = v.String()
		case bool:
			out[name] = strconv.FormatBool(v)
		default:
			bad = append(bad, fmt.Sprintf("%s: must be a string, number, or boolean", name))
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, fmt.Errorf("invalid values file %s: %s", path, strings.Join(bad, "; "))
	}
	return out, nil
}
