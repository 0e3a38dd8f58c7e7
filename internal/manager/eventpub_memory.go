package manager

import "sync"

// MemoryPublisher records events in order. Used by tests and by embedders
// that poll lifecycle history instead of subscribing.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

// Events returns a copy of every recorded event.
func (p *MemoryPublisher) Events() []Event {
	return p.filter(func(Event) bool { return true })
}

// Names returns the recorded event names in publish order.
func (p *MemoryPublisher) Names() []string {
	evts := p.Events()
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Name
	}
	return out
}

// Last returns the most recent event called name.
func (p *MemoryPublisher) Last(name string) (Event, bool) {
	evts := p.filter(func(e Event) bool { return e.Name == name })
	if len(evts) == 0 {
		return Event{}, false
	}
	return evts[len(evts)-1], true
}

// ByOp returns the events of one operation.
func (p *MemoryPublisher) ByOp(op string) []Event {
	return p.filter(func(e Event) bool { return e.OpID == op })
}

func (p *MemoryPublisher) filter(keep func(Event) bool) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
