package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/citegraph/internal/citation"
)

// State is the position of a run in the enrichment state machine.
type State string

const (
	StateFiltering   State = "filtering"
	StateFetching    State = "fetching"
	StateConfirmGate State = "confirm_gate"
	StateParsing     State = "parsing"
	StateMerging     State = "merging"
	StateDone        State = "done"
	StateAborted     State = "aborted"
	StateFailed      State = "failed"
)

// Default concurrency limits.
const (
	DefaultFetchConcurrency = 8
	DefaultParseConcurrency = 4
)

// ReferenceResolver resolves one raw reference entry. Errors are skips.
type ReferenceResolver interface {
	Resolve(ctx context.Context, ref citation.RawReference) (citation.Item, error)
}

// Skip describes a reference entry that produced no citation.
type Skip struct {
	Index  int    `json:"index"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Outcome is the per-source result of a run.
type Outcome struct {
	SourceID   string          `json:"source_id"`
	DOI        string          `json:"doi"`
	Found      int             `json:"found"`
	Resolved   int             `json:"resolved"`
	Items      []citation.Item `json:"items,omitempty"`
	Skips      []Skip          `json:"skips,omitempty"`
	FetchError string          `json:"fetch_error,omitempty"`
}

// Result summarises a run.
type Result struct {
	State State `json:"state"`

	// Reason explains an Aborted or Failed run; nil when Done.
	Reason error `json:"-"`

	Total          int       `json:"total"`
	Eligible       int       `json:"eligible"`
	RecordsUpdated int       `json:"records_updated"`
	CitationsAdded int       `json:"citations_added"`
	FetchFailures  int       `json:"fetch_failures"`
	Outcomes       []Outcome `json:"outcomes,omitempty"`
}

// Found returns the total number of references fetched.
func (r *Result) Found() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Found
	}
	return n
}

// Skipped returns the total number of skipped entries.
func (r *Result) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Skips)
	}
	return n
}

// Orchestrator drives enrichment runs over batches of sources.
type Orchestrator struct {
	provider ReferenceProvider
	resolver ReferenceResolver
	store    citation.Store
	notifier Notifier
	text     Localizer
	log      *zap.Logger

	fetchLimit int
	parseLimit int
	newID      func() string
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithLocalizer sets the localizer used for notifier messages.
func WithLocalizer(l Localizer) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.text = l
		}
	}
}

// WithFetchConcurrency bounds the number of concurrent provider fetches.
func WithFetchConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.fetchLimit = n
		}
	}
}

// WithParseConcurrency bounds concurrent entry resolution within a record.
func WithParseConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.parseLimit = n
		}
	}
}

// WithIDGenerator sets the citation ID generator (for testing).
func WithIDGenerator(f func() string) Option {
	return func(o *Orchestrator) {
		o.newID = f
	}
}

// WithClock sets the clock used for citation timestamps (for testing).
func WithClock(f func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = f
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(provider ReferenceProvider, resolver ReferenceResolver, store citation.Store, notifier Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:   provider,
		resolver:   resolver,
		store:      store,
		notifier:   notifier,
		text:       keyLocalizer{},
		log:        zap.NewNop(),
		fetchLimit: DefaultFetchConcurrency,
		parseLimit: DefaultParseConcurrency,
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fetched is one source's fetch result.
type fetched struct {
	refs []citation.RawReference
	err  error
}

// Enrich runs the pipeline over sources. Sources without a DOI are
// ignored. The returned Result is never nil.
//
// A run ends Done, Aborted or Failed. Declining the confirmation and
// finding no references abort without an error; ErrNoEligibleSourceRecords,
// ErrFetchingStageFault, ErrParsingStageFault and ErrMergeFailed are
// returned as errors. No citation is written unless the run ends Done.
func (o *Orchestrator) Enrich(ctx context.Context, sources []Source) (*Result, error) {
	res := &Result{State: StateFiltering, Total: len(sources)}

	eligible := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.DOI != "" {
			eligible = append(eligible, s)
		}
	}
	res.Eligible = len(eligible)
	if len(eligible) == 0 {
		o.log.Info("no source records with a DOI", zap.Int("total", len(sources)))
		o.notifier.Alert(o.text.Text(MsgNoDOITitle), o.text.Text(MsgNoDOIMessage))
		o.finish(res, StateAborted, ErrNoEligibleSourceRecords)
		return res, ErrNoEligibleSourceRecords
	}

	defer o.notifier.Close()
	o.notifier.Update(StatusLoading, o.text.Text(MsgLoading))

	res.State = StateFetching
	lists, err := o.fetch(ctx, eligible)
	if err != nil {
		o.log.Error("fetching references failed", zap.Error(err))
		o.notifier.Update(StatusError, o.text.Text(MsgErrorGettingReferences))
		o.finish(res, StateAborted, err)
		return res, err
	}

	res.Outcomes = make([]Outcome, len(eligible))
	recordsWithRefs, total := 0, 0
	for i, s := range eligible {
		out := Outcome{SourceID: s.ID, DOI: s.DOI, Found: len(lists[i].refs)}
		if lists[i].err != nil {
			out.FetchError = lists[i].err.Error()
			res.FetchFailures++
		}
		if out.Found > 0 {
			recordsWithRefs++
		}
		total += out.Found
		res.Outcomes[i] = out
	}

	res.State = StateConfirmGate
	if total == 0 {
		if res.FetchFailures == len(eligible) {
			o.log.Warn("every reference fetch failed", zap.Int("sources", len(eligible)))
		} else {
			o.log.Info("no references found", zap.Int("sources", len(eligible)), zap.Int("fetch_failures", res.FetchFailures))
		}
		o.notifier.Update(StatusError, o.text.Text(MsgNoReferences))
		o.finish(res, StateAborted, ErrNoReferences)
		return res, nil
	}

	confirmed := o.notifier.Confirm(
		o.text.Text(MsgConfirmTitle),
		o.text.Text(MsgConfirmMessage, recordsWithRefs, len(sources), total),
	)
	if !confirmed {
		o.log.Info("enrichment declined", zap.Int("references", total))
		o.finish(res, StateAborted, ErrDeclined)
		return res, nil
	}

	res.State = StateParsing
	o.notifier.Update(StatusLoading, o.text.Text(MsgParsing))
	if err := o.parse(ctx, res, lists, recordsWithRefs); err != nil {
		o.log.Error("parsing references failed", zap.Error(err))
		o.notifier.Update(StatusError, o.text.Text(MsgErrorParsingReferences))
		o.finish(res, StateAborted, err)
		return res, err
	}

	res.State = StateMerging
	added, updated, err := o.merge(ctx, res)
	if err != nil {
		o.log.Error("merging citations failed", zap.Error(err))
		o.notifier.Update(StatusError, o.text.Text(MsgErrorSavingCitations))
		o.finish(res, StateFailed, err)
		return res, err
	}
	res.CitationsAdded = added
	res.RecordsUpdated = updated

	o.log.Info("enrichment done",
		zap.Int("records_updated", updated),
		zap.Int("citations_added", added),
		zap.Int("skipped", res.Skipped()))
	o.notifier.Update(StatusDone, o.text.Text(MsgDone))
	o.finish(res, StateDone, nil)
	return res, nil
}

func (o *Orchestrator) finish(res *Result, state State, reason error) {
	res.State = state
	res.Reason = reason
}

// fetch gets every source's reference list concurrently. A failed fetch
// yields an empty list for that source and does not cancel the others;
// only a panic fails the stage.
func (o *Orchestrator) fetch(ctx context.Context, sources []Source) ([]fetched, error) {
	results := make([]fetched, len(sources))

	var g errgroup.Group
	g.SetLimit(o.fetchLimit)
	for i, s := range sources {
		i, s := i, s
		g.Go(func() (err error) {
			defer recoverFault(&err, ErrFetchingStageFault)

			refs, ferr := o.provider.References(ctx, s.DOI)
			if ferr != nil {
				o.log.Warn("reference provider unavailable",
					zap.String("source", s.ID),
					zap.String("doi", s.DOI),
					zap.Error(ferr))
				results[i] = fetched{err: fmt.Errorf("%w: %w", ErrProviderUnavailable, ferr)}
				return nil
			}
			if len(refs) == 0 {
				o.log.Debug("work has no references", zap.String("source", s.ID), zap.String("doi", s.DOI))
			}
			results[i] = fetched{refs: refs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// parse resolves each record's references, one record at a time in input
// order, reporting progress after each record.
func (o *Orchestrator) parse(ctx context.Context, res *Result, lists []fetched, recordsWithRefs int) error {
	parsed := 0
	for i := range res.Outcomes {
		refs := lists[i].refs
		if len(refs) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrParsingStageFault, err)
		}

		items, skips, err := o.resolveAll(ctx, res.Outcomes[i].SourceID, refs)
		if err != nil {
			return err
		}
		res.Outcomes[i].Items = items
		res.Outcomes[i].Skips = skips
		res.Outcomes[i].Resolved = len(items)

		parsed++
		o.notifier.Update(StatusLoading, o.text.Text(MsgParsingProgress, parsed, recordsWithRefs))
	}
	return nil
}

// resolveAll resolves the entries of one record concurrently, keeping
// results in entry order. Skipped entries are dropped from items.
func (o *Orchestrator) resolveAll(ctx context.Context, sourceID string, refs []citation.RawReference) ([]citation.Item, []Skip, error) {
	type slot struct {
		item citation.Item
		err  error
	}
	slots := make([]slot, len(refs))

	var g errgroup.Group
	g.SetLimit(o.parseLimit)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() (err error) {
			defer recoverFault(&err, ErrParsingStageFault)
			item, rerr := o.resolver.Resolve(ctx, ref)
			slots[i] = slot{item: item, err: rerr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var items []citation.Item
	var skips []Skip
	for i, s := range slots {
		if s.err == nil {
			items = append(items, s.item)
			continue
		}
		reason := skipReason(s.err)
		fields := []zap.Field{
			zap.String("source", sourceID),
			zap.Int("index", i),
			zap.String("reason", reason.Error()),
			zap.String("entry", refs[i].JSON()),
		}
		sk := Skip{Index: i, Key: refs[i].Key(), Reason: reason.Error()}
		if IsSkip(s.err) {
			o.log.Info("reference skipped", fields...)
			var se *SkipError
			errors.As(s.err, &se)
			sk.Detail = se.Detail
		} else {
			// A resolver error that is not a skip still degrades only this entry.
			o.log.Warn("reference resolver failed", append(fields, zap.Error(s.err))...)
		}
		skips = append(skips, sk)
	}
	return items, skips, nil
}

// merge appends one citation per resolved item to each source in a single
// transaction. Sources without resolved items are not touched.
func (o *Orchestrator) merge(ctx context.Context, res *Result) (added, updated int, err error) {
	defer recoverFault(&err, ErrMergeFailed)

	err = o.store.Transact(ctx, func(w citation.Writer) error {
		for _, out := range res.Outcomes {
			if len(out.Items) == 0 {
				continue
			}
			createdAt := o.now().UTC().Format(time.RFC3339)
			cs := make([]citation.Citation, len(out.Items))
			for j, item := range out.Items {
				cs[j] = citation.New(o.newID(), out.SourceID, item)
				cs[j].CreatedAt = createdAt
			}
			if err := w.AddCitations(out.SourceID, cs); err != nil {
				return fmt.Errorf("adding citations to %s: %w", out.SourceID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}

	for _, out := range res.Outcomes {
		if len(out.Items) > 0 {
			added += len(out.Items)
			updated++
		}
	}
	return added, updated, nil
}
