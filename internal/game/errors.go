package game

import (
	"errors"
	"fmt"
)

// Session errors. Everything except ErrStartup is recoverable and leaves the
// session unchanged.
var (
	ErrStartup           = errors.New("game: no root word available")
	ErrNotStarted        = errors.New("game: session not started")
	ErrDuplicateWord     = errors.New("game: word already used")
	ErrNotComposable     = errors.New("game: word cannot be spelled from root word")
	ErrNotARealWord      = errors.New("game: word not recognized")
	ErrOracleUnavailable = errors.New("game: dictionary unavailable")
)

// Reason codes reported to clients.
const (
	ReasonStartup           = "startup_failure"
	ReasonNotStarted        = "not_started"
	ReasonDuplicateWord     = "duplicate_word"
	ReasonNotComposable     = "not_composable"
	ReasonNotARealWord      = "not_a_real_word"
	ReasonOracleUnavailable = "oracle_unavailable"
)

// RejectionError is returned by Submit when a word fails a check.
// It unwraps to one of the sentinel errors above (and to the oracle's own
// error for ErrOracleUnavailable).
type RejectionError struct {
	Word    string
	Kind    error
	Title   string // short human-readable heading
	Message string // longer human-readable explanation
	Cause   error
}

func (e *RejectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %q: %v", e.Kind, e.Word, e.Cause)
	}
	return fmt.Sprintf("%v: %q", e.Kind, e.Word)
}

func (e *RejectionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func reject(kind error, word, root string, cause error) *RejectionError {
	e := &RejectionError{Word: word, Kind: kind, Cause: cause}
	switch kind {
	case ErrDuplicateWord:
		e.Title, e.Message = "Word used already", "Be more original"
	case ErrNotComposable:
		e.Title, e.Message = "Word not possible", fmt.Sprintf("You can't spell that word from '%s'!", root)
	case ErrNotARealWord:
		e.Title, e.Message = "Word not recognized", "You can't just make them up, you know!"
	case ErrOracleUnavailable:
		e.Title, e.Message = "Dictionary unavailable", "The word could not be checked right now. Try again."
	}
	return e
}

// Reason maps an error from this package to a stable reason code.
// Unknown errors map to "".
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStartup):
		return ReasonStartup
	case errors.Is(err, ErrNotStarted):
		return ReasonNotStarted
	case errors.Is(err, ErrDuplicateWord):
		return ReasonDuplicateWord
	case errors.Is(err, ErrNotComposable):
		return ReasonNotComposable
	case errors.Is(err, ErrNotARealWord):
		return ReasonNotARealWord
	case errors.Is(err, ErrOracleUnavailable):
		return ReasonOracleUnavailable
	}
	return ""
}

// Fatal reports whether err means the session could not be started.
func Fatal(err error) bool { return errors.Is(err, ErrStartup) }
