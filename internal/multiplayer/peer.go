package multiplayer

import (
	"sync"

	"github.com/vovakirdan/snakenet/internal/wire"
)

// Peer is the transport-neutral handle the host fans snapshots out to.
type Peer interface {
	// ID returns the client-supplied player id.
	ID() string

	// Send queues msg for delivery. Must be non-blocking.
	// It returns an error once the peer is gone.
	Send(msg wire.Message) error

	// Done returns a channel that closes when the peer ends.
	Done() <-chan struct{}

	// Close ends the peer. Safe to call multiple times.
	Close() error
}

// ChannelPeer is an in-process Peer backed by a Go channel.
// Used by the SSH front-end, where each terminal session plays inside the
// host process and reads snapshots straight from the channel.
type ChannelPeer struct {
	id  string
	box *mailbox[wire.Message]
}

// NewChannelPeer creates a channel-based peer.
// bufferSize controls how many messages are held before the oldest is dropped.
func NewChannelPeer(id string, bufferSize int) *ChannelPeer {
	return &ChannelPeer{id: id, box: newMailbox[wire.Message](bufferSize)}
}

// ID returns the player id.
func (p *ChannelPeer) ID() string {
	return p.id
}

// Send queues msg, dropping the oldest message if the buffer is full.
func (p *ChannelPeer) Send(msg wire.Message) error {
	if !p.box.push(msg) {
		return ErrPeerClosed
	}
	return nil
}

// Messages returns the channel to receive messages from.
func (p *ChannelPeer) Messages() <-chan wire.Message {
	return p.box.items
}

// Done returns the done channel.
func (p *ChannelPeer) Done() <-chan struct{} {
	return p.box.done
}

// Close marks the peer as done.
func (p *ChannelPeer) Close() error {
	p.box.close()
	return nil
}

// PeerRegistry is the host's fan-out set.
// Thread-safe for concurrent access.
type PeerRegistry struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

// NewPeerRegistry creates an empty registry.
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{
		peers: make(map[string]Peer),
	}
}

// Register adds a peer. An id that belongs to a live peer is rejected; the
// slot of a peer that already ended is taken over.
func (r *PeerRegistry) Register(p Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.peers[p.ID()]; ok {
		select {
		case <-existing.Done():
		default:
			return ErrDuplicatePeer
		}
	}
	r.peers[p.ID()] = p
	return nil
}

// Unregister removes p if it is still the registered peer for its id.
// It reports whether p was removed.
func (r *PeerRegistry) Unregister(p Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.peers[p.ID()]; ok && current == p {
		delete(r.peers, p.ID())
		return true
	}
	return false
}

// Get retrieves a peer by id.
func (r *PeerRegistry) Get(id string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	return p, ok
}

// Count returns the number of registered peers.
func (r *PeerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// List returns the registered peers at the time of the call.
func (r *PeerRegistry) List() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p)
	}
	return out
}
