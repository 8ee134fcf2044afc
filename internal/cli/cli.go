package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/mtlsim/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// listFlag collects every occurrence of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("mtlsim", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mtlsim - An event-driven simulator for hierarchical hardware models.

Usage:
  mtlsim [options] [MODEL_PATH]

Arguments:
  MODEL_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Examples:
  mtlsim -top Counter -poke en=1 -cycles 10 -peek count models/
  mtlsim -top Counter -serve :8080 models/
  mtlsim -remote http://localhost:8080 -poke en=1 -cycles 3 -peek count

Options:
`)
		flagSet.PrintDefaults()
	}

	var pokes, peeks, params listFlag
	modelFlag := flagSet.String("model", "", "Path to the model file or directory.")
	mFlag := flagSet.String("m", "", "Path to the model file or directory (shorthand).")
	topFlag := flagSet.String("top", "", "Top module to simulate. Optional when the model defines a single module.")
	flagSet.Var(&params, "param", "Top module parameter override `name=value`. Repeatable.")
	cyclesFlag := flagSet.Int("cycles", 0, "Number of clock cycles to run after reset.")
	flagSet.Var(&pokes, "poke", "Input value `path=value` written after reset. Repeatable.")
	flagSet.Var(&peeks, "peek", "Signal `path` printed at the end of the run. Repeatable.")
	maxEvalsFlag := flagSet.Int("max-evals", 0, "Bound on behaviour evaluations per settle. 0 is unbounded.")
	loopCheckFlag := flagSet.String("loop-check", "warn", "Combinational loop check. Options: 'off', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	serveFlag := flagSet.String("serve", "", "Serve the simulator over socket.io on this `address`, e.g. ':8080'.")
	remoteFlag := flagSet.String("remote", "", "Drive a simulator served at this `url` instead of a local model.")
	timeoutFlag := flagSet.Duration("timeout", app.DefaultTimeout, "Timeout for remote connections and requests.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *modelFlag != "" {
		path = *modelFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Model path determined.", "path", path)

	if path == "" && *remoteFlag == "" {
		slog.Debug("No model path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	cfg := app.Config{
		ModelPath: path,
		Top:       *topFlag,
		Cycles:    *cyclesFlag,
		Peeks:     peeks,
		MaxEvals:  *maxEvalsFlag,
		LoopCheck: strings.ToLower(*loopCheckFlag),
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Serve:     *serveFlag,
		Remote:    *remoteFlag,
		Timeout:   *timeoutFlag,
	}
	for _, raw := range pokes {
		p, err := app.ParsePoke(raw)
		if err != nil {
			return nil, false, usageError("%v", err)
		}
		cfg.Pokes = append(cfg.Pokes, p)
	}
	if len(params) > 0 {
		cfg.Params = make(map[string]int64, len(params))
		for _, raw := range params {
			name, v, err := app.ParseParam(raw)
			if err != nil {
				return nil, false, usageError("%v", err)
			}
			cfg.Params[name] = v
		}
	}
	if cfg.Remote != "" && (cfg.Top != "" || len(cfg.Params) > 0) {
		return nil, false, usageError("-top and -param have no effect with -remote")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
