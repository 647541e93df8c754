package audit

import (
	"context"
	"fmt"
	"sort"

	"markpart/pkg/platform/sentinel"
)

// singleGroup is the sentinel key for the default whole-entity group. An
// explicit sentinel avoids the ambiguity of a nil key function returning nil
// for every row.
type singleGroup struct{}

// Builder is the generic derivation engine. It replays the snapshot sequence
// of one entity and emits creation, change and deletion entries per declared
// comparer, per group, in chronological order within each group.
//
// Output across groups is concatenated, not globally re-sorted. Callers that
// combine the output of multiple builders must re-sort by
// (Timestamp, Sequence) themselves; see Entry.Sequence.
type Builder[C comparable, T any] struct {
	source    Source[T]
	comparers []Comparer[C, T]
	groupKey  func(Snapshot[T]) any
	initial   *Snapshot[T]
}

// NewBuilder constructs a builder over a source with a non-empty ordered
// comparer list.
func NewBuilder[C comparable, T any](source Source[T], comparers ...Comparer[C, T]) *Builder[C, T] {
	return &Builder[C, T]{source: source, comparers: comparers}
}

// WithGroupKey partitions the snapshot stream by the given key before
// creation/change/deletion detection. Keys must be comparable values.
//
// Returning a fresh unique key per row (e.g. uuid.New()) is a supported
// degenerate pattern: every row becomes its own singleton group and every
// row emits its creation entries, bypassing diffing entirely.
func (b *Builder[C, T]) WithGroupKey(fn func(Snapshot[T]) any) *Builder[C, T] {
	b.groupKey = fn
	return b
}

// WithInitial prepends a synthetic snapshot, used when a logical creation
// predates the first real history row (e.g. system-seeded permissions). The
// caller supplies its timestamp and identity; the engine never reads a clock.
func (b *Builder[C, T]) WithInitial(s Snapshot[T]) *Builder[C, T] {
	b.initial = &s
	return b
}

// Build reads all row versions and derives the audit entries. A source with
// zero rows yields an empty result, not an error.
func (b *Builder[C, T]) Build(ctx context.Context) ([]Entry[C], error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	snapshots, err := b.source.ReadChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("read changes: %w", err)
	}
	if b.initial != nil {
		snapshots = append([]Snapshot[T]{*b.initial}, snapshots...)
	}

	// Partition into groups, preserving first-appearance order so repeated
	// builds over the same sequence produce identical output.
	keyOf := b.groupKey
	if keyOf == nil {
		keyOf = func(Snapshot[T]) any { return singleGroup{} }
	}
	groups := make(map[any][]Snapshot[T])
	var order []any
	for _, snap := range snapshots {
		key := keyOf(snap)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], snap)
	}

	var entries []Entry[C]
	seq := 0
	emit := func(e Entry[C]) {
		e.Sequence = seq
		seq++
		entries = append(entries, e)
	}

	for _, key := range order {
		b.replayGroup(groups[key], emit)
	}
	return entries, nil
}

// replayGroup walks one group's chronologically ordered snapshots and emits
// its creation, change and deletion entries.
func (b *Builder[C, T]) replayGroup(group []Snapshot[T], emit func(Entry[C])) {
	// Same-instant rows happen on rapid sequential writes inside one
	// transaction; the write-path version discriminator breaks the tie.
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].PeriodStart.Equal(group[j].PeriodStart) {
			return group[i].Version < group[j].Version
		}
		return group[i].PeriodStart.Before(group[j].PeriodStart)
	})

	first := group[0]
	for _, c := range b.comparers {
		if !c.firesOnCreation() {
			continue
		}
		emit(Entry[C]{
			Change:              c.Change,
			Timestamp:           first.PeriodStart,
			AuditIdentity:       first.ChangedBy,
			IsInitialAssignment: true,
			CurrentValue:        c.AuditedValue(first.Entity),
		})
	}

	for i := 1; i < len(group); i++ {
		prev, curr := group[i-1], group[i]

		// Deletion only ever surfaces on the terminal row. History is
		// append-only; only the terminal state of a group can represent
		// "this is now gone", so interior deletion markers are not scanned.
		if i == len(group)-1 && curr.DeletedBy != nil {
			for _, c := range b.comparers {
				if !c.firesOnDeletion() {
					continue
				}
				emit(Entry[C]{
					Change:        c.Change,
					Timestamp:     curr.PeriodStart,
					AuditIdentity: *curr.DeletedBy,
					PreviousValue: c.AuditedValue(curr.Entity),
				})
			}
			continue
		}

		for _, c := range b.comparers {
			if !c.HasChanged(prev.Entity, curr.Entity) {
				continue
			}
			emit(Entry[C]{
				Change:        c.Change,
				Timestamp:     curr.PeriodStart,
				AuditIdentity: curr.ChangedBy,
				CurrentValue:  c.AuditedValue(curr.Entity),
				PreviousValue: c.AuditedValue(prev.Entity),
			})
		}
	}
}

func (b *Builder[C, T]) validate() error {
	if b.source == nil {
		return fmt.Errorf("%w: builder requires a source", sentinel.ErrMisconfigured)
	}
	if len(b.comparers) == 0 {
		return fmt.Errorf("%w: builder requires at least one comparer", sentinel.ErrMisconfigured)
	}
	for _, c := range b.comparers {
		if c.Compare == nil || c.Render == nil {
			return fmt.Errorf("%w: comparer %v needs both a compare and a render projection", sentinel.ErrMisconfigured, c.Change)
		}
	}
	return nil
}
