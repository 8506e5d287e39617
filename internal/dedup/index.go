package dedup

import (
	"strings"
	"sync"
)

// Index is the set of posting identifiers already committed to the sink.
// It only grows: there is no removal of committed identifiers.
type Index struct {
	mu       sync.Mutex
	ids      map[string]struct{}
	reserved map[string]struct{}
}

func New() *Index {
	return &Index{
		ids:      make(map[string]struct{}),
		reserved: make(map[string]struct{}),
	}
}

// Seed adds every non-blank identifier to the index.
func (i *Index) Seed(ids []string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, id := range ids {
		if id = normalize(id); id != "" {
			i.ids[id] = struct{}{}
		}
	}
}

func (i *Index) Contains(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	_, ok := i.ids[normalize(id)]
	return ok
}

// Add marks id as committed. It must be called only after the sink accepted the record.
func (i *Index) Add(id string) {
	id = normalize(id)
	if id == "" {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.reserved, id)
	i.ids[id] = struct{}{}
}

// Reserve atomically claims id for processing. It returns false when id is
// already committed or claimed by another caller.
func (i *Index) Reserve(id string) bool {
	id = normalize(id)
	if id == "" {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.ids[id]; ok {
		return false
	}
	if _, ok := i.reserved[id]; ok {
		return false
	}

	i.reserved[id] = struct{}{}
	return true
}

// Release drops a reservation that did not end in a commit.
func (i *Index) Release(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.reserved, normalize(id))
}

func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return len(i.ids)
}

func normalize(id string) string {
	return strings.TrimSpace(id)
}
