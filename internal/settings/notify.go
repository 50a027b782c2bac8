package settings

import (
	"sync"

	"neobridge/internal/rpcvalue"
)

// Change describes one accepted setting update.
type Change struct {
	Name   string
	Old    rpcvalue.Value
	New    rpcvalue.Value
	Source string
}

// Observer is called after a setting changes.
type Observer func(Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *notifier
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type notifier struct {
	mu     sync.RWMutex
	global map[uint64]Observer
	byName map[string]map[uint64]Observer
	nextID uint64
}

func newNotifier() *notifier {
	return &notifier{
		global: make(map[uint64]Observer),
		byName: make(map[string]map[uint64]Observer),
	}
}

func (n *notifier) subscribe(name string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if name == "" {
		n.global[id] = observer
	} else {
		if n.byName[name] == nil {
			n.byName[name] = make(map[uint64]Observer)
		}
		n.byName[name][id] = observer
	}
	return &Subscription{id: id, notifier: n}
}

func (n *notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for name, observers := range n.byName {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.byName, name)
		}
	}
}

func (n *notifier) deliver(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.global)+len(n.byName[change.Name]))
	for _, obs := range n.global {
		observers = append(observers, obs)
	}
	for _, obs := range n.byName[change.Name] {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}
