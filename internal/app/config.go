package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/mtlsim/internal/sim"
)

// Poke is a value written to a signal before the run.
type Poke struct {
	Path  string
	Value uint64
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath string // .hcl file or directory
	Top       string // module to elaborate; may be empty when the model defines one module
	Params    map[string]int64

	Cycles int
	Pokes  []Poke
	Peeks  []string

	MaxEvals  int
	LoopCheck string

	LogFormat string
	LogLevel  string

	Serve   string // listen address for the socket.io server
	Remote  string // URL of a running server to drive instead of a local model
	Timeout time.Duration
}

// DefaultTimeout bounds remote connections and requests.
const DefaultTimeout = 10 * time.Second

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Remote == "" && cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	if cfg.Remote != "" && cfg.Serve != "" {
		return nil, errors.New("serve and remote are mutually exclusive")
	}
	if cfg.Cycles < 0 {
		return nil, fmt.Errorf("cycles must not be negative, got %d", cfg.Cycles)
	}
	if cfg.MaxEvals < 0 {
		return nil, fmt.Errorf("max-evals must not be negative, got %d", cfg.MaxEvals)
	}
	if _, err := sim.ParseLoopCheck(cfg.LoopCheck); err != nil {
		return nil, err
	}
	for _, p := range cfg.Pokes {
		if p.Path == "" {
			return nil, errors.New("poke requires a signal path")
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &cfg, nil
}

// ParsePoke parses `path=value`. The value accepts Go integer literal
// prefixes such as 0x and 0b.
func ParsePoke(s string) (Poke, error) {
	path, raw, ok := strings.Cut(s, "=")
	path, raw = strings.TrimSpace(path), strings.TrimSpace(raw)
	if !ok || path == "" || raw == "" {
		return Poke{}, fmt.Errorf("invalid poke %q: expected path=value", s)
	}
	v, err := strconv.ParseUint(raw, 0, 64)
	if err != nil {
		return Poke{}, fmt.Errorf("invalid poke %q: %w", s, err)
	}
	return Poke{Path: path, Value: v}, nil
}

// ParseParam parses a `name=value` parameter override.
func ParseParam(s string) (string, int64, error) {
	name, raw, ok := strings.Cut(s, "=")
	name, raw = strings.TrimSpace(name), strings.TrimSpace(raw)
	if !ok || name == "" || raw == "" {
		return "", 0, fmt.Errorf("invalid param %q: expected name=value", s)
	}
	v, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid param %q: %w", s, err)
	}
	return name, v, nil
}
