package translate

import (
	"errors"
	"fmt"

	"github.com/matsen/citegraph/internal/enrich"
)

var (
	// ErrNoTranslator indicates no translator is registered for an identifier kind.
	ErrNoTranslator = errors.New("no translator for identifier kind")

	// ErrNotReady indicates a lookup before the item schema was loaded.
	ErrNotReady = errors.New("translators not ready")

	// ErrBookNotFound indicates Open Library has no record for an ISBN.
	ErrBookNotFound = errors.New("book not found in Open Library")
)

// InvalidIdentifierError reports an identifier value a translator cannot use.
type InvalidIdentifierError struct {
	Kind  enrich.IdentifierKind
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}
