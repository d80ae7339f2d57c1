package gitlog

import (
	"container/heap"
	"fmt"
	"slices"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// TopoSort orders revs so that every revision comes before its parents.
// Among revisions that are ready at the same time, the most recent commit
// time wins, then the original position. Parents outside revs are ignored.
//
// The input slice is not modified. Duplicate ids keep their first
// occurrence.
func TopoSort(revs []revision.Revision) ([]revision.Revision, error) {
	index := make(map[revision.ID]int, len(revs))
	for i, r := range revs {
		if _, dup := index[r.ID]; !dup {
			index[r.ID] = i
		}
	}

	// children counts the in-set children still waiting to be emitted.
	children := make([]int, len(revs))
	for i, r := range revs {
		if index[r.ID] != i {
			continue
		}
		for _, p := range uniqueParents(r) {
			if j, ok := index[p]; ok {
				children[j]++
			}
		}
	}

	ready := &readyQueue{revs: revs}
	for i, r := range revs {
		if index[r.ID] == i && children[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]revision.Revision, 0, len(index))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, revs[i])
		for _, p := range uniqueParents(revs[i]) {
			j, ok := index[p]
			if !ok {
				continue
			}
			if children[j]--; children[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	if len(out) != len(index) {
		return nil, fmt.Errorf("%w: %d of %d revisions unreachable", ErrCycle, len(index)-len(out), len(index))
	}
	return out, nil
}

func uniqueParents(r revision.Revision) []revision.ID {
	if len(r.Parents) < 2 {
		return r.Parents
	}
	out := make([]revision.ID, 0, len(r.Parents))
	for _, p := range r.Parents {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// readyQueue is a max-heap of indexes into revs by commit time.
type readyQueue struct {
	revs  []revision.Revision
	items []int
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) Less(a, b int) bool {
	ra, rb := q.revs[q.items[a]], q.revs[q.items[b]]
	if !ra.CommitTime.Equal(rb.CommitTime) {
		return ra.CommitTime.After(rb.CommitTime)
	}
	return q.items[a] < q.items[b]
}

func (q *readyQueue) Swap(a, b int) { q.items[a], q.items[b] = q.items[b], q.items[a] }

func (q *readyQueue) Push(x any) { q.items = append(q.items, x.(int)) }

func (q *readyQueue) Pop() any {
	n := len(q.items)
	x := q.items[n-1]
	q.items = q.items[:n-1]
	return x
}
