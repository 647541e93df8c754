package audit

// EmitPolicy governs at which lifecycle stages a comparer fires.
type EmitPolicy int

// Every comparer participates in diffing at interior transitions; the policy
// adds lifecycle emissions on top of that.
const (
	// EmitOnChange fires only on a detected diff between consecutive
	// snapshots. It never fires on the first snapshot of a group nor on the
	// deletion-triggering one, even if the value is non-default.
	EmitOnChange EmitPolicy = iota
	// EmitOnCreation additionally fires on the first snapshot of a group,
	// as an initial assignment.
	EmitOnCreation
	// EmitOnDeletion additionally fires when the terminal snapshot of a
	// group carries a deletion marker.
	EmitOnDeletion
	// EmitOnCreationAndDeletion fires at both ends of the group's lifecycle.
	EmitOnCreationAndDeletion
)

// Comparer declares how one tracked field of an entity is audited: how to
// project a comparable value for change detection, how to render the audited
// string, and when to emit.
//
// Compare must return a comparable value (string, number, bool, time.Time or
// a comparable struct); nil is a valid projection. Compare and Render are
// supplied together; a comparer missing either fails the build up front.
//
// A Compare returning a constant can never report a change. Combined with
// EmitOnChange that makes the comparer a silent no-op; this is a documented
// caller-discipline contract, not a validated error, because constant
// projections are deliberately used for always-true-at-creation entries.
type Comparer[C comparable, T any] struct {
	Change  C
	Policy  EmitPolicy
	Compare func(entity T) any
	Render  func(entity T) *string
}

// HasChanged reports whether the compared projection differs between two
// snapshots. Nil projections compare equal to each other.
func (c Comparer[C, T]) HasChanged(prev, curr T) bool {
	return c.Compare(prev) != c.Compare(curr)
}

// AuditedValue renders the human-readable audited value for an entity.
func (c Comparer[C, T]) AuditedValue(entity T) *string {
	return c.Render(entity)
}

func (c Comparer[C, T]) firesOnCreation() bool {
	return c.Policy == EmitOnCreation || c.Policy == EmitOnCreationAndDeletion
}

func (c Comparer[C, T]) firesOnDeletion() bool {
	return c.Policy == EmitOnDeletion || c.Policy == EmitOnCreationAndDeletion
}
