package enrich

import (
	"errors"
	"fmt"
)

// Batch-level conditions. The first three are terminal failures returned
// by Enrich; ErrNoReferences and ErrDeclined only describe why a run was
// aborted.
var (
	ErrNoEligibleSourceRecords = errors.New("no source records with a DOI")
	ErrFetchingStageFault      = errors.New("fetching stage fault")
	ErrParsingStageFault       = errors.New("parsing stage fault")
	ErrMergeFailed             = errors.New("merging citations failed")
	ErrNoReferences            = errors.New("no references found")
	ErrDeclined                = errors.New("declined by user")
)

// Per-unit conditions. These never abort a batch: a record whose fetch
// fails contributes no references, an entry that cannot be resolved is
// skipped.
var (
	ErrProviderUnavailable     = errors.New("reference provider unavailable")
	ErrIdentifierNotResolved   = errors.New("identifier not resolved")
	ErrUnstructuredUnsupported = errors.New("unstructured references are not supported")
	ErrUnclassifiableReference = errors.New("reference has no journal-title or volume-title")
)

// SkipError records why one reference entry produced no item.
type SkipError struct {
	Reason error
	Detail string
}

func (e *SkipError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *SkipError) Unwrap() error {
	return e.Reason
}

func skip(reason error, format string, args ...any) error {
	return &SkipError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err marks a skipped entry rather than a fault.
func IsSkip(err error) bool {
	var s *SkipError
	return errors.As(err, &s)
}

// skipReason returns the reason sentinel of a skip, or err itself.
func skipReason(err error) error {
	var s *SkipError
	if errors.As(err, &s) {
		return s.Reason
	}
	return err
}

// recoverFault turns a panic in a stage goroutine into a stage error.
// It must be deferred directly.
func recoverFault(err *error, stage error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", stage, r)
	}
}
