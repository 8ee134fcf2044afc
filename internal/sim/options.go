package sim

import "fmt"

// LoopCheck selects what construction does about combinational loops.
type LoopCheck string

const (
	LoopCheckOff   LoopCheck = "off"
	LoopCheckWarn  LoopCheck = "warn"
	LoopCheckError LoopCheck = "error"
)

// ParseLoopCheck validates a loop check mode. The empty string selects
// LoopCheckWarn.
func ParseLoopCheck(s string) (LoopCheck, error) {
	switch LoopCheck(s) {
	case "":
		return LoopCheckWarn, nil
	case LoopCheckOff, LoopCheckWarn, LoopCheckError:
		return LoopCheck(s), nil
	default:
		return "", fmt.Errorf("invalid loop check %q: must be 'off', 'warn', or 'error'", s)
	}
}

// Options configure a Simulator.
type Options struct {
	// MaxEvals bounds every drain of the combinational network. Zero means
	// unbounded; a cyclic network then never returns.
	MaxEvals int
	// LoopCheck defaults to LoopCheckWarn.
	LoopCheck LoopCheck
}
