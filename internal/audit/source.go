package audit

import "context"

// Source supplies every historical and current row version of one entity.
// Order of the returned snapshots is not significant; the Builder sorts
// within each group.
type Source[T any] interface {
	ReadChanges(ctx context.Context) ([]Snapshot[T], error)
}

// SliceSource adapts an already-materialized snapshot slice to Source. Used
// by tests and by repositories that prefetch rows themselves.
type SliceSource[T any] []Snapshot[T]

func (s SliceSource[T]) ReadChanges(context.Context) ([]Snapshot[T], error) {
	return s, nil
}
