package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matsen/citegraph/internal/citation"
)

// fakeProvider serves canned reference lists by DOI.
type fakeProvider struct {
	refs   map[string][]citation.RawReference
	errs   map[string]error
	delays map[string]time.Duration
	panics map[string]bool
	calls  atomic.Int32
}

func (p *fakeProvider) References(ctx context.Context, doi string) ([]citation.RawReference, error) {
	p.calls.Add(1)
	if d := p.delays[doi]; d > 0 {
		time.Sleep(d)
	}
	if p.panics[doi] {
		panic("provider exploded")
	}
	if err := p.errs[doi]; err != nil {
		return nil, err
	}
	return p.refs[doi], nil
}

// fakeIdentifiers resolves identifiers from a table and records lookups.
type fakeIdentifiers struct {
	mu     sync.Mutex
	items  map[string]citation.Item
	seen   []Identifier
	panics bool
}

func (f *fakeIdentifiers) ResolveIdentifier(ctx context.Context, id Identifier) (citation.Item, error) {
	f.mu.Lock()
	f.seen = append(f.seen, id)
	f.mu.Unlock()
	if f.panics {
		panic("resolver exploded")
	}
	item, ok := f.items[id.String()]
	if !ok {
		return citation.Item{}, skip(ErrIdentifierNotResolved, "%s: no candidates", id)
	}
	return item, nil
}

// tableResolver is an IdentifierResolver returning candidates by identifier.
type tableResolver map[string][]Candidate

func (r tableResolver) ResolveIdentifier(ctx context.Context, id Identifier, opts LookupOptions) ([]Candidate, error) {
	return r[id.String()], nil
}

func (f *fakeIdentifiers) lookups() []Identifier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Identifier(nil), f.seen...)
}

type notification struct {
	Status  Status
	Message string
}

// fakeNotifier records every call and answers Confirm with answer.
type fakeNotifier struct {
	answer   bool
	updates  []notification
	alerts   []string
	confirms []string
	closed   int
}

func (n *fakeNotifier) Update(status Status, message string) {
	n.updates = append(n.updates, notification{status, message})
}

func (n *fakeNotifier) Alert(title, message string) {
	n.alerts = append(n.alerts, title+": "+message)
}

func (n *fakeNotifier) Confirm(title, message string) bool {
	n.confirms = append(n.confirms, title+": "+message)
	return n.answer
}

func (n *fakeNotifier) Close() {
	n.closed++
}

func (n *fakeNotifier) last() notification {
	if len(n.updates) == 0 {
		return notification{}
	}
	return n.updates[len(n.updates)-1]
}

// memStore is an in-memory citation.Store. With failAfter >= 0 the
// transaction fails on the AddCitations call following failAfter
// successful ones.
type memStore struct {
	mu        sync.Mutex
	citations map[string][]citation.Citation
	failAfter int
	commits   int
}

func newMemStore() *memStore {
	return &memStore{citations: make(map[string][]citation.Citation), failAfter: -1}
}

type memTx struct {
	staged    map[string][]citation.Citation
	calls     int
	failAfter int
}

var errForcedFault = errors.New("forced fault")

func (tx *memTx) AddCitations(sourceID string, cs []citation.Citation) error {
	if tx.failAfter >= 0 && tx.calls >= tx.failAfter {
		return fmt.Errorf("%w after %d records", errForcedFault, tx.calls)
	}
	for i := range cs {
		if err := cs[i].Validate(); err != nil {
			return fmt.Errorf("citation %s: %w", cs[i].ID, err)
		}
	}
	tx.calls++
	tx.staged[sourceID] = append(tx.staged[sourceID], cs...)
	return nil
}

func (s *memStore) Transact(ctx context.Context, fn func(citation.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string][]citation.Citation, len(s.citations))
	for k, v := range s.citations {
		staged[k] = append([]citation.Citation(nil), v...)
	}
	tx := &memTx{staged: staged, failAfter: s.failAfter}
	if err := fn(tx); err != nil {
		return err
	}
	s.citations = staged
	s.commits++
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, cs := range s.citations {
		n += len(cs)
	}
	return n
}

// seqIDs returns an ID generator yielding id-1, id-2, ...
func seqIDs() func() string {
	var n atomic.Int32
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}
