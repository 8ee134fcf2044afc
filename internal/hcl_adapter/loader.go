package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/fsutil"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoFiles is returned when none of the given paths contain .hcl files.
var ErrNoFiles = errors.New("no .hcl files found")

// Factory builds a module implemented in Go, e.g. a wrapped foreign model.
// It receives the parameters of the instance that requested it.
type Factory func(params map[string]cty.Value) (*model.Module, error)

// Library holds every module definition found by the loader.
type Library struct {
	defs      map[string]*moduleBlock
	factories map[string]Factory
	files     map[string]*hcl.File
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		defs:      make(map[string]*moduleBlock),
		factories: make(map[string]Factory),
		files:     make(map[string]*hcl.File),
	}
}

// Register makes a Go-implemented module available to `instance` blocks
// under name.
func (l *Library) Register(name string, f Factory) error {
	if _, ok := l.defs[name]; ok {
		return fmt.Errorf("module %q is already defined in HCL", name)
	}
	if _, ok := l.factories[name]; ok {
		return fmt.Errorf("module %q is already registered", name)
	}
	l.factories[name] = f
	return nil
}

// Modules returns the names of all known modules, sorted.
func (l *Library) Modules() []string {
	out := make([]string, 0, len(l.defs)+len(l.factories))
	for name := range l.defs {
		out = append(out, name)
	}
	for name := range l.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether a module with the given name is known.
func (l *Library) Has(name string) bool {
	_, declared := l.defs[name]
	_, registered := l.factories[name]
	return declared || registered
}

// Loader parses model descriptions.
type Loader struct{}

// NewLoader creates a new HCL model loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths into a new Library. Paths may be
// files or directories.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Library, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to collect model files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	lib := NewLibrary()
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := lib.decode(hclFile); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
	}
	lib.files = parser.Files()

	logger.Debug("HCL loading complete.", "modules", len(lib.defs))
	return lib, nil
}

// LoadSource parses a single in-memory description. The filename is only
// used in diagnostics.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*Library, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	lib := NewLibrary()
	if err := lib.decode(hclFile); err != nil {
		return nil, fmt.Errorf("failed to decode HCL source %s: %w", filename, err)
	}
	lib.files = parser.Files()
	ctxlog.FromContext(ctx).Debug("HCL source loaded.", "file", filename, "modules", len(lib.defs))
	return lib, nil
}

func (l *Library) decode(f *hcl.File) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return diags
	}
	for _, def := range root.Modules {
		if prev, ok := l.defs[def.Name]; ok {
			return fmt.Errorf("module %q at %s is already defined at %s", def.Name, def.DeclRange, prev.DeclRange)
		}
		l.defs[def.Name] = def
	}
	return nil
}
