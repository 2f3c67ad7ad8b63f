package ws

import "sync"

// Hub tracks live peers and their topic subscriptions. Broadcasts from the
// session loop and sends from connection goroutines interleave, so the hub
// keeps its own lock; peers themselves are lock-free channel writers.
type Hub struct {
	mu     sync.Mutex
	peers  map[string]*Peer
	topics map[string]map[string]*Peer
}

func NewHub() *Hub {
	return &Hub{
		peers:  map[string]*Peer{},
		topics: map[string]map[string]*Peer{},
	}
}

func (h *Hub) add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.id] = p
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, id)
	for topic, subs := range h.topics {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

func (h *Hub) subscribe(topic string, p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = map[string]*Peer{}
		h.topics[topic] = subs
	}
	subs[p.id] = p
}

// Publish pushes a message to every peer subscribed to the topic.
func (h *Hub) Publish(topic string, b []byte) {
	h.mu.Lock()
	subs := make([]*Peer, 0, len(h.topics[topic]))
	for _, p := range h.topics[topic] {
		subs = append(subs, p)
	}
	h.mu.Unlock()

	for _, p := range subs {
		p.Send(b)
	}
}

// Peer is one live websocket connection. Send enqueues onto the out channel
// drained by the connection's writer goroutine; when the queue is full the
// oldest message is dropped so a slow client never stalls the session loop.
type Peer struct {
	id  string
	hub *Hub
	out chan []byte
}

func newPeer(id string, hub *Hub, queue int) *Peer {
	if queue <= 0 {
		queue = 64
	}
	return &Peer{id: id, hub: hub, out: make(chan []byte, queue)}
}

func (p *Peer) ID() string { return p.id }

func (p *Peer) Send(b []byte) {
	select {
	case p.out <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-p.out:
	default:
	}
	select {
	case p.out <- b:
	default:
	}
}

func (p *Peer) Subscribe(topic string) { p.hub.subscribe(topic, p) }

func (p *Peer) Publish(topic string, b []byte) { p.hub.Publish(topic, b) }
