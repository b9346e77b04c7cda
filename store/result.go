package store

// Result is what a reducer returns for one action: whether the state
// changed, and the effects to hand to the effect translator.
//
// Changed is whatever the reducer declares; the store never compares old and
// new state. Effects keep emission order.
type Result[E any] struct {
	Changed bool
	Effects []E
}

// Unchanged is the zero Result.
func Unchanged[E any]() Result[E] {
	return Result[E]{}
}

// Changed marks the state as changed with no effects.
func Changed[E any]() Result[E] {
	return Result[E]{Changed: true}
}

// Effect returns an unchanged Result carrying a single effect.
func Effect[E any](e E) Result[E] {
	return Result[E]{Effects: []E{e}}
}

// Effects returns an unchanged Result carrying es in order.
func Effects[E any](es ...E) Result[E] {
	return Result[E]{Effects: es}
}

// ChangedWith marks the state as changed and carries es in order.
func ChangedWith[E any](es ...E) Result[E] {
	return Result[E]{Changed: true, Effects: es}
}

// With appends e to the effect list.
func (r Result[E]) With(e E) Result[E] {
	effects := make([]E, len(r.Effects), len(r.Effects)+1)
	copy(effects, r.Effects)
	r.Effects = append(effects, e)
	return r
}

// MarkChanged returns r with Changed set.
func (r Result[E]) MarkChanged() Result[E] {
	r.Changed = true
	return r
}

// HasEffects reports whether r carries at least one effect.
func (r Result[E]) HasEffects() bool {
	return len(r.Effects) > 0
}
