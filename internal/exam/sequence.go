package exam

import "sort"

// sortQuestions orders snapshots of both kinds by creation, which is the
// order they were drawn in.
func sortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		a, b := qs[i].base(), qs[j].base()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if qs[i].Kind() != qs[j].Kind() {
			return qs[i].Kind() < qs[j].Kind()
		}
		return a.ID < b.ID
	})
}

// Neighbors returns the questions immediately before and after ref in qs.
// Either is nil at a boundary; both are nil when ref is not in qs.
func Neighbors(qs []Question, ref Ref) (prev, next Question) {
	idx := -1
	for i, q := range qs {
		if q.Ref() == ref {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	if idx > 0 {
		prev = qs[idx-1]
	}
	if idx+1 < len(qs) {
		next = qs[idx+1]
	}
	return prev, next
}
