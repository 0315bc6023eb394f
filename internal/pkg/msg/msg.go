// Package msg is the internal publish/subscribe fabric. The daemon
// publishes one message per completed conversion; storage and event
// handlers subscribe by topic and receive fan-out copies on buffered
// channels.
package msg

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Topic routes messages to interested subscribers.
type Topic int

const (
	// Converted marks a completed raw network to case conversion.
	Converted Topic = iota
	// Reversed marks a completed case to raw network conversion.
	Reversed
)

func (t Topic) String() string {
	switch t {
	case Converted:
		return "converted"
	case Reversed:
		return "reversed"
	}
	return "unknown"
}

// Publisher is the subscription surface handed to handlers.
type Publisher interface {
	Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error)
	Unsubscribe(pid uuid.UUID)
}

// Msg couples a sender, a topic and a payload.
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function.
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID.
func (m Msg) PID() uuid.UUID {
	return m.sender
}

// Topic returns the routing topic.
func (m Msg) Topic() Topic {
	return m.topic
}

// Payload returns the message data.
func (m Msg) Payload() interface{} {
	return m.payload
}

// PubSub fans published messages out to per-subscriber channels.
type PubSub struct {
	mux  *sync.Mutex
	pid  uuid.UUID
	subs map[Topic]map[uuid.UUID]chan Msg
}

// NewPublisher returns a PubSub publishing under the given sender PID.
func NewPublisher(pid uuid.UUID) *PubSub {
	return &PubSub{
		mux:  &sync.Mutex{},
		pid:  pid,
		subs: make(map[Topic]map[uuid.UUID]chan Msg),
	}
}

// Subscribe registers pid for topic and returns its receive channel.
// A pid subscribes to a topic at most once.
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error) {
	p.mux.Lock()
	defer p.mux.Unlock()

	if _, ok := p.subs[topic]; !ok {
		p.subs[topic] = make(map[uuid.UUID]chan Msg)
	}
	if _, ok := p.subs[topic][pid]; ok {
		return nil, fmt.Errorf("pid %v already subscribed to topic %v", pid, topic)
	}

	ch := make(chan Msg, 50)
	p.subs[topic][pid] = ch
	return ch, nil
}

// Unsubscribe drops pid from every topic and closes its channels.
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()

	for _, topicSubs := range p.subs {
		if ch, ok := topicSubs[pid]; ok {
			close(ch)
			delete(topicSubs, pid)
		}
	}
}

// Publish delivers payload to every subscriber of topic. A subscriber
// with a full buffer misses the message rather than blocking the
// publisher.
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.mux.Lock()
	defer p.mux.Unlock()

	for _, ch := range p.subs[topic] {
		select {
		case ch <- New(p.pid, topic, payload):
		default:
		}
	}
}

// Stop closes every subscriber channel.
func (p *PubSub) Stop() {
	p.mux.Lock()
	defer p.mux.Unlock()

	for _, topicSubs := range p.subs {
		for pid, ch := range topicSubs {
			close(ch)
			delete(topicSubs, pid)
		}
	}
}
