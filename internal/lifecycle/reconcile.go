package lifecycle

// Change is the edit that turns one named set into another.
type Change[E any] struct {
	Added   []E
	Removed []E
}

func (c Change[E]) Empty() bool { return len(c.Added) == 0 && len(c.Removed) == 0 }

// Reconcile diffs the names in oldNames and newNames and resolves the
// difference against pool. Names with no entry in pool are dropped from both
// sides without error; a judge renamed or removed upstream simply falls out
// of the change.
//
// Both sides are computed from oldNames and newNames, so Added and Removed
// can be applied in either order.
func Reconcile[E any](oldNames, newNames []string, pool []E, nameOf func(E) string) Change[E] {
	byName := make(map[string]E, len(pool))
	for _, e := range pool {
		n := nameOf(e)
		if _, dup := byName[n]; !dup {
			byName[n] = e
		}
	}
	return Change[E]{
		Added:   resolve(difference(newNames, oldNames), byName),
		Removed: resolve(difference(oldNames, newNames), byName),
	}
}

// ReconcileNames is Reconcile over a pool of plain names.
func ReconcileNames(oldNames, newNames, pool []string) (added, removed []string) {
	c := Reconcile(oldNames, newNames, pool, func(s string) string { return s })
	return c.Added, c.Removed
}

// difference returns the names of a not in b, first occurrence order.
func difference(a, b []string) []string {
	skip := make(map[string]bool, len(b))
	for _, n := range b {
		skip[n] = true
	}
	var out []string
	for _, n := range a {
		if skip[n] {
			continue
		}
		skip[n] = true
		out = append(out, n)
	}
	return out
}

func resolve[E any](names []string, byName map[string]E) []E {
	var out []E
	for _, n := range names {
		if e, ok := byName[n]; ok {
			out = append(out, e)
		}
	}
	return out
}
