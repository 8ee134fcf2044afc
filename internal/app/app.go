package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/hcl_adapter"
	"github.com/specialistvlad/mtlsim/internal/remote"
	"github.com/specialistvlad/mtlsim/internal/sim"
	"github.com/zclconf/go-cty/cty"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	modules []Module
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. When no modules are given the core modules are
// registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	if len(modules) == 0 {
		modules = coreModules
	}
	return &App{outW: outW, logger: logger, config: cfg, modules: modules}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Run executes the configured session: a remote run, a server, or a local
// batch run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.logger.Debug("App.Run method finished.")

	if a.config.Remote != "" {
		return a.runRemote(ctx)
	}

	s, err := a.Build(ctx)
	if err != nil {
		return err
	}
	if a.config.Serve != "" {
		return remote.NewServer(ctx, remote.NewSession(s, a.config.Peeks...)).Serve(ctx, a.config.Serve)
	}
	return a.runLocal(s)
}

// Build loads the model, elaborates the top module and constructs the
// simulator.
func (a *App) Build(ctx context.Context) (*sim.Simulator, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	lib, err := hcl_adapter.NewLoader().Load(ctx, a.config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	for _, m := range a.modules {
		if err := lib.Register(m.Name, m.Factory); err != nil {
			return nil, fmt.Errorf("failed to register module: %w", err)
		}
	}

	top := a.config.Top
	if top == "" {
		top, err = soleModule(lib, a.modules)
		if err != nil {
			return nil, err
		}
	}

	overrides := make(map[string]cty.Value, len(a.config.Params))
	for k, v := range a.config.Params {
		overrides[k] = cty.NumberIntVal(v)
	}
	m, err := lib.Elaborate(ctx, top, overrides)
	if err != nil {
		return nil, err
	}

	loopCheck, err := sim.ParseLoopCheck(a.config.LoopCheck)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(ctx, m, sim.Options{MaxEvals: a.config.MaxEvals, LoopCheck: loopCheck})
	if err != nil {
		return nil, fmt.Errorf("failed to build simulator for %s: %w", top, err)
	}
	a.logger.Info("Simulator ready.", "top", top, "nets", len(s.Nets()), "nodes", len(s.Nodes()))
	return s, nil
}

// soleModule picks the top module when the model defines exactly one.
func soleModule(lib *hcl_adapter.Library, registered []Module) (string, error) {
	skip := make(map[string]struct{}, len(registered))
	for _, m := range registered {
		skip[m.Name] = struct{}{}
	}
	var defined []string
	for _, name := range lib.Modules() {
		if _, ok := skip[name]; !ok {
			defined = append(defined, name)
		}
	}
	if len(defined) != 1 {
		return "", fmt.Errorf("the model defines %d modules %v; choose one with -top", len(defined), defined)
	}
	return defined[0], nil
}

func (a *App) runLocal(s *sim.Simulator) error {
	if err := s.Reset(); err != nil {
		return err
	}
	for _, p := range a.config.Pokes {
		if err := s.Poke(p.Path, p.Value); err != nil {
			return err
		}
	}
	if err := s.Eval(); err != nil {
		return err
	}
	if err := s.Cycles(a.config.Cycles); err != nil {
		return err
	}

	stats := s.Stats()
	a.logger.Info("Run finished.", "cycles", stats.Cycles, "evals", stats.Evals, "seq_evals", stats.SeqEvals, "notifies", stats.Notifies)

	for _, path := range a.config.Peeks {
		n, err := s.Node(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%s = %d (%s)\n", path, n.Uint64(), bits.Format(n.Uint64(), n.Width()))
	}
	return nil
}

func (a *App) runRemote(ctx context.Context) error {
	c, err := remote.Dial(ctx, a.config.Remote, a.config.Timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := c.Reset(ctx)
	if err != nil {
		return err
	}
	for _, p := range a.config.Pokes {
		if st, err = c.Poke(ctx, p.Path, p.Value); err != nil {
			return err
		}
	}
	if a.config.Cycles > 0 {
		if st, err = c.Cycle(ctx, a.config.Cycles); err != nil {
			return err
		}
	}
	if len(a.config.Peeks) > 0 {
		if st, err = c.Peek(ctx, a.config.Peeks...); err != nil {
			return err
		}
	}
	a.logger.Info("Remote run finished.", "session", st.Session, "cycles", st.Cycles)
	printState(a.outW, st)
	return nil
}

func printState(w io.Writer, st *remote.State) {
	paths := make([]string, 0, len(st.Values))
	for p := range st.Values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(w, "%s = %d\n", p, st.Values[p])
	}
}
