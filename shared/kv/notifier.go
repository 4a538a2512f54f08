package kv

import "sync"

// Notifier fans changes out to per-key subscribers. Callbacks run
// synchronously on the publishing goroutine and carry no acknowledgement.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(Change)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]func(Change))}
}

// Subscribe registers fn for key.
func (n *Notifier) Subscribe(key string, fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.subs[key] == nil {
		n.subs[key] = make(map[int]func(Change))
	}
	n.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[key], id)
			if len(n.subs[key]) == 0 {
				delete(n.subs, key)
			}
		})
	}
}

// Watched reports whether anyone subscribed to key.
func (n *Notifier) Watched(key string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[key]) > 0
}

// WatchedKeys returns the keys that currently have subscribers.
func (n *Notifier) WatchedKeys() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	keys := make([]string, 0, len(n.subs))
	for k := range n.subs {
		keys = append(keys, k)
	}
	return keys
}

// Publish delivers c to the subscribers of c.Key.
func (n *Notifier) Publish(c Change) {
	n.mu.RLock()
	fns := make([]func(Change), 0, len(n.subs[c.Key]))
	for _, fn := range n.subs[c.Key] {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
