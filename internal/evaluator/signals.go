package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/jessie/internal/object"
)

// ExitKind is the kind of a nonlocal exit.
type ExitKind int

const (
	ExitReturn ExitKind = iota
	ExitBreak
	ExitContinue
)

func (k ExitKind) String() string {
	switch k {
	case ExitReturn:
		return "return"
	case ExitBreak:
		return "break"
	case ExitContinue:
		return "continue"
	}
	return "unknown"
}

// ExitSignal is a control transfer travelling up the Go call stack through
// the error channel. It is never a guest error: try/catch lets it pass and
// only the construct it targets consumes it.
type ExitSignal struct {
	Kind  ExitKind
	Label string
	Value object.Object
}

func (s *ExitSignal) Error() string {
	if s.Label != "" {
		return fmt.Sprintf("%s %s outside of its target", s.Kind, s.Label)
	}
	return fmt.Sprintf("%s outside of its target", s.Kind)
}

// asExit extracts the exit signal carried by err, if any.
func asExit(err error) (*ExitSignal, bool) {
	var sig *ExitSignal
	if errors.As(err, &sig) {
		return sig, true
	}
	return nil, false
}

// loopExit reports whether err is a break or continue aimed at a loop
// labelled label (or at no label at all).
func loopExit(err error, label string) (*ExitSignal, bool) {
	sig, ok := asExit(err)
	if !ok || sig.Kind == ExitReturn {
		return nil, false
	}
	if sig.Label != "" && sig.Label != label {
		return nil, false
	}
	return sig, true
}
