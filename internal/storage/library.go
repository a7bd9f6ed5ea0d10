package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/citation"
	"github.com/matsen/citegraph/internal/reference"
)

// ErrUnknownSource is returned when citations are added to a source
// record that is not in the library.
var ErrUnknownSource = errors.New("unknown source record")

// ErrDuplicateCitation is returned when a citation ID is already stored.
var ErrDuplicateCitation = errors.New("duplicate citation id")

// Library is the JSONL-backed record store. Writes are serialised within
// the process and each replaces its file atomically.
type Library struct {
	refsPath      string
	citationsPath string
	log           *zap.Logger

	mu sync.Mutex
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithLibraryLogger sets the logger.
func WithLibraryLogger(log *zap.Logger) LibraryOption {
	return func(l *Library) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLibrary creates a Library over the given refs and citations files.
// Missing files are treated as empty.
func NewLibrary(refsPath, citationsPath string, opts ...LibraryOption) *Library {
	l := &Library{refsPath: refsPath, citationsPath: citationsPath, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// References returns every source record.
func (l *Library) References() ([]reference.Reference, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ReadAll(l.refsPath)
}

// AddReferences stores new source records, assigning each a unique
// citekey-style ID. Records whose DOI is already present are returned in
// skipped and not stored.
func (l *Library) AddReferences(ctx context.Context, refs []reference.Reference) (added, skipped []reference.Reference, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	existing, err := ReadAll(l.refsPath)
	if err != nil {
		return nil, nil, err
	}

	all := existing
	for _, ref := range refs {
		if _, dup := FindByDOI(all, ref.DOI); dup {
			skipped = append(skipped, ref)
			continue
		}
		base := ref.ID
		if base == "" {
			base = ref.CiteKey()
		}
		ref.ID = GenerateUniqueID(all, base)
		all = append(all, ref)
		added = append(added, ref)
	}
	if len(added) == 0 {
		return nil, skipped, nil
	}

	// A single new record goes on the end of the file; batches rewrite it.
	if len(added) == 1 {
		err = Append(l.refsPath, added[0])
	} else {
		err = WriteAll(l.refsPath, all)
	}
	if err != nil {
		return nil, nil, err
	}
	l.log.Debug("references added", zap.Int("added", len(added)), zap.Int("skipped", len(skipped)))
	return added, skipped, nil
}

// UpdateReference replaces the stored record with the same ID.
func (l *Library) UpdateReference(ref reference.Reference) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	refs, err := ReadAll(l.refsPath)
	if err != nil {
		return err
	}
	idx, ok := FindByID(refs, ref.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, ref.ID)
	}
	refs[idx] = ref
	return WriteAll(l.refsPath, refs)
}

// Transact implements citation.Store. fn adds citations to a staged copy
// of the citations file; the copy replaces the file only if fn succeeds.
func (l *Library) Transact(ctx context.Context, fn func(w citation.Writer) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	refs, err := ReadAll(l.refsPath)
	if err != nil {
		return err
	}
	existing, err := ReadAllCitations(l.citationsPath)
	if err != nil {
		return err
	}

	tx := &libraryTx{
		sources: make(map[string]bool, len(refs)),
		ids:     make(map[string]bool, len(existing)),
		staged:  append([]citation.Citation(nil), existing...),
	}
	for _, r := range refs {
		tx.sources[r.ID] = true
	}
	for _, c := range existing {
		tx.ids[c.ID] = true
	}

	if err := fn(tx); err != nil {
		l.log.Debug("citation transaction rolled back", zap.Int("staged", tx.added), zap.Error(err))
		return err
	}
	if tx.added == 0 {
		return nil
	}
	if err := WriteAllCitations(l.citationsPath, tx.staged); err != nil {
		return err
	}
	l.log.Debug("citation transaction committed", zap.Int("added", tx.added))
	return nil
}

// libraryTx stages citations for one Transact call.
type libraryTx struct {
	sources map[string]bool
	ids     map[string]bool
	staged  []citation.Citation
	added   int
}

func (tx *libraryTx) AddCitations(sourceID string, citations []citation.Citation) error {
	if !tx.sources[sourceID] {
		return fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	for _, c := range citations {
		if c.SourceID != sourceID {
			return fmt.Errorf("citation %s belongs to %s, not %s", c.ID, c.SourceID, sourceID)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("citation %s: %w", c.ID, err)
		}
		if tx.ids[c.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateCitation, c.ID)
		}
	}
	for _, c := range citations {
		c.SetCreatedAt()
		if c.OCIs == nil {
			c.OCIs = []string{}
		}
		tx.ids[c.ID] = true
		tx.staged = append(tx.staged, c)
	}
	tx.added += len(citations)
	return nil
}
