package git

import (
	"iter"
	"strings"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/go-git/go-git/v5/plumbing"
)

// commitLookup resolves an id through a repository's commit arena
type commitLookup func(id plumbing.Hash) (*Commit, error)

// newestFirst orders commits by commit time, newest first, then by id
func newestFirst(a, b interface{}) int {
	ca := a.(*Commit)
	cb := b.(*Commit)
	switch {
	case ca.Time.After(cb.Time):
		return -1
	case cb.Time.After(ca.Time):
		return 1
	}
	return strings.Compare(ca.ID.String(), cb.ID.String())
}

// walkFrom yields id and every ancestor exactly once, following all parents.
// A parent is only queued once one of its children has been yielded.
func walkFrom(lookup commitLookup, id plumbing.Hash) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		start, err := lookup(id)
		if err != nil {
			yield(nil, err)
			return
		}

		queue := priorityqueue.NewWith(newestFirst)
		queue.Enqueue(start)
		seen := map[plumbing.Hash]struct{}{start.ID: {}}

		for !queue.Empty() {
			v, _ := queue.Dequeue()
			commit := v.(*Commit)
			if !yield(commit, nil) {
				return
			}
			for _, parentID := range commit.ParentIDs {
				if _, ok := seen[parentID]; ok {
					continue
				}
				seen[parentID] = struct{}{}
				parent, err := lookup(parentID)
				if err != nil {
					yield(nil, err)
					return
				}
				queue.Enqueue(parent)
			}
		}
	}
}

// ancestorsOf returns id and all of its ancestors keyed by id
func ancestorsOf(lookup commitLookup, id plumbing.Hash) (map[plumbing.Hash]*Commit, error) {
	result := make(map[plumbing.Hash]*Commit)
	for commit, err := range walkFrom(lookup, id) {
		if err != nil {
			return nil, err
		}
		result[commit.ID] = commit
	}
	return result, nil
}

// mergeBase finds the best common ancestor of a and b: a common ancestor that is
// not itself an ancestor of another common ancestor. When history has several
// (criss-cross merges) the newest one wins, ties broken by id.
func mergeBase(lookup commitLookup, a, b plumbing.Hash) (plumbing.Hash, bool, error) {
	if a == b {
		if _, err := lookup(a); err != nil {
			return plumbing.ZeroHash, false, err
		}
		return a, true, nil
	}

	fromA, err := ancestorsOf(lookup, a)
	if err != nil {
		return plumbing.ZeroHash, false, err
	}

	common := make(map[plumbing.Hash]*Commit)
	for commit, err := range walkFrom(lookup, b) {
		if err != nil {
			return plumbing.ZeroHash, false, err
		}
		if _, ok := fromA[commit.ID]; ok {
			common[commit.ID] = commit
		}
	}
	if len(common) == 0 {
		return plumbing.ZeroHash, false, nil
	}

	// Every ancestor of a common commit is common, so the walk stays inside the map.
	redundant := make(map[plumbing.Hash]struct{})
	for _, commit := range common {
		stack := append([]plumbing.Hash(nil), commit.ParentIDs...)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := redundant[id]; ok {
				continue
			}
			redundant[id] = struct{}{}
			if parent, ok := common[id]; ok {
				stack = append(stack, parent.ParentIDs...)
			}
		}
	}

	var best *Commit
	for id, commit := range common {
		if _, ok := redundant[id]; ok {
			continue
		}
		if best == nil || newestFirst(commit, best) < 0 {
			best = commit
		}
	}
	return best.ID, true, nil
}
