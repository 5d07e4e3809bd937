package testutil

import (
	"sync"

	"github.com/trezcool/yuva/core"
)

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []core.Event
}

func (p *Publisher) Publish(evt core.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *Publisher) Events() []core.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Event(nil), p.events...)
}
