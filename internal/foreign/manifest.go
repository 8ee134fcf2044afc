package foreign

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

var (
	// ErrInvalidManifest is returned when a port list does not satisfy the
	// manifest schema.
	ErrInvalidManifest = errors.New("invalid foreign manifest")
	// ErrPortMismatch is returned when an implementation's ports differ from
	// the manifest it is wrapped with.
	ErrPortMismatch = errors.New("foreign port mismatch")
)

//go:embed manifest.cue
var schemaSource []byte

// Port is one entry of a port contract.
type Port struct {
	Name  string `json:"name"`
	Dir   string `json:"dir"`
	Width int    `json:"width"`
}

func (p Port) String() string {
	return fmt.Sprintf("%s %s[%d]", p.Dir, p.Name, p.Width)
}

// Port directions.
const (
	DirIn  = "in"
	DirOut = "out"
)

// Manifest is the port contract a foreign model is wrapped with.
type Manifest struct {
	Name  string `json:"name"`
	Ports []Port `json:"ports"`
}

type validator struct {
	ctx      *cue.Context
	manifest cue.Value
}

var (
	schemaOnce sync.Once
	schema     *validator
	schemaErr  error
)

// The CUE runtime is not safe for concurrent use, so every use of the
// shared validator goes through validatorMu.
var validatorMu sync.Mutex

func loadValidator() (*validator, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileBytes(schemaSource)
		if v.Err() != nil {
			schemaErr = fmt.Errorf("compiling manifest schema: %w", v.Err())
			return
		}
		def := v.LookupPath(cue.ParsePath("#Manifest"))
		if def.Err() != nil {
			schemaErr = fmt.Errorf("looking up #Manifest definition: %w", def.Err())
			return
		}
		schema = &validator{ctx: ctx, manifest: def}
	})
	return schema, schemaErr
}

func (v *validator) unify(data []byte) (cue.Value, error) {
	value := v.ctx.CompileBytes(data)
	if value.Err() != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrInvalidManifest, value.Err())
	}
	unified := v.manifest.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return unified, nil
}

// Validate checks m against the manifest schema and for duplicate names.
func (m Manifest) Validate() error {
	if m.Ports == nil {
		m.Ports = []Port{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	v, err := loadValidator()
	if err != nil {
		return err
	}
	validatorMu.Lock()
	_, err = v.unify(data)
	validatorMu.Unlock()
	if err != nil {
		return fmt.Errorf("manifest %q: %w", m.Name, err)
	}

	seen := make(map[string]bool, len(m.Ports))
	for _, p := range m.Ports {
		if seen[p.Name] {
			return fmt.Errorf("manifest %q: duplicate port %q: %w", m.Name, p.Name, ErrInvalidManifest)
		}
		seen[p.Name] = true
	}
	return nil
}

// ParseManifest reads a manifest written in CUE or JSON and validates it.
func ParseManifest(src []byte) (Manifest, error) {
	v, err := loadValidator()
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	validatorMu.Lock()
	unified, err := v.unify(src)
	if err == nil {
		err = unified.Decode(&m)
	}
	validatorMu.Unlock()
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, m.Validate()
}

// diff compares two port lists regardless of order and describes every
// difference.
func diff(want, got []Port) []string {
	index := func(ports []Port) map[string]Port {
		out := make(map[string]Port, len(ports))
		for _, p := range ports {
			out[p.Name] = p
		}
		return out
	}
	w, g := index(want), index(got)

	var out []string
	for name, wp := range w {
		gp, ok := g[name]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("missing %s", wp))
		case gp != wp:
			out = append(out, fmt.Sprintf("expected %s, implementation has %s", wp, gp))
		}
	}
	for name, gp := range g {
		if _, ok := w[name]; !ok {
			out = append(out, fmt.Sprintf("unexpected %s", gp))
		}
	}
	sort.Strings(out)
	return out
}

func mismatch(name string, diffs []string) error {
	return fmt.Errorf("%s: %s: %w", name, strings.Join(diffs, "; "), ErrPortMismatch)
}
