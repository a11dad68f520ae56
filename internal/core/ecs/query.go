package ecs

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.data {
			if b, ok := sb.data[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, b := range sb.data {
		if a, ok := sa.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Count2 returns how many entities hold both A and B, skipping those for
// which exclude reports true.
func Count2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], exclude func(EntityID) bool) int {
	n := 0
	Each2(sa, sb, func(id EntityID, _ *A, _ *B) {
		if exclude == nil || !exclude(id) {
			n++
		}
	})
	return n
}
