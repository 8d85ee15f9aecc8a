package frontier

import "sync"

/*
Frontier tracks the documents of one crawl pass.

- Claim admits a document ID at most once per pass, so an ID listed on two
  pages is dispatched once
- Discover records the IDs a pass saved, in save order; the graph pass
  walks them afterwards
- Knows nothing about:
	- fetching
	- parsing
	- storage

It is a data structure, not a pipeline executor. It is safe for
concurrent use by the workers of a pass.
*/
type Frontier struct {
	mu         sync.Mutex
	claimed    Set[string]
	discovered *FIFOQueue[string]
	seen       Set[string]
}

func NewFrontier() *Frontier {
	return &Frontier{
		claimed:    NewSet[string](),
		discovered: NewFIFOQueue[string](),
		seen:       NewSet[string](),
	}
}

// Claim reports whether id was not claimed before in this pass.
func (f *Frontier) Claim(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimed.Add(id)
}

func (f *Frontier) ClaimedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimed.Size()
}

// Discover records a document saved by this pass. Repeated IDs are kept once.
func (f *Frontier) Discover(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen.Add(id) {
		f.discovered.Enqueue(id)
	}
}

// Drain returns the discovered IDs in discovery order and empties the queue.
func (f *Frontier) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, f.discovered.Size())
	for {
		id, ok := f.discovered.Dequeue()
		if !ok {
			return ids
		}
		ids = append(ids, id)
	}
}
