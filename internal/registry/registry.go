package registry

import (
	"errors"
	"sync"
)

// ErrAlreadyJoined is returned when a connection that already has a room sends
// another join. First join wins; the relay never moves a connection between
// rooms.
var ErrAlreadyJoined = errors.New("connection already joined a room")

// Conn is the transport-side handle the registry tracks. The registry holds
// non-owning references; the websocket layer owns the socket itself.
type Conn interface {
	ID() string
	Send(data []byte) error
}

// Member is one room entry: the connection plus the role it joined with.
type Member struct {
	Conn Conn
	Role string
}

// Registry is the authoritative room-to-members mapping shared by every
// connection handler and the liveness supervisor. All operations are atomic
// with respect to each other; returned slices are point-in-time snapshots so
// callers can fan out sends without holding the lock.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]Member // roomID -> connID -> member
	joined map[string]string            // connID -> roomID
}

func New() *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]Member),
		joined: make(map[string]string),
	}
}

// Join registers the connection in the room, creating the room if absent.
func (r *Registry) Join(c Conn, roomID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.joined[c.ID()]; ok {
		return ErrAlreadyJoined
	}
	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]Member)
		r.rooms[roomID] = room
	}
	room[c.ID()] = Member{Conn: c, Role: role}
	r.joined[c.ID()] = roomID
	return nil
}

// Leave removes the connection from its room and deletes the room the moment
// it empties. It returns the room id and a snapshot of the remaining members
// so the caller can notify them. ok is false when the connection never joined.
func (r *Registry) Leave(c Conn) (roomID string, remaining []Member, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok = r.joined[c.ID()]
	if !ok {
		return "", nil, false
	}
	delete(r.joined, c.ID())

	room := r.rooms[roomID]
	delete(room, c.ID())
	if len(room) == 0 {
		delete(r.rooms, roomID)
		return roomID, nil, true
	}
	return roomID, snapshot(room), true
}

// Members returns a snapshot of the room's member set, empty if the room does
// not exist.
func (r *Registry) Members(roomID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.rooms[roomID])
}

// Find returns the room member with the given id.
func (r *Registry) Find(roomID, peerID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rooms[roomID][peerID]
	if !ok {
		return nil, false
	}
	return m.Conn, true
}

// Room returns the room the connection joined, if any.
func (r *Registry) Room(c Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.joined[c.ID()]
	return roomID, ok
}

// Stats reports the current number of rooms and joined connections.
func (r *Registry) Stats() (rooms, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.joined)
}

func snapshot(room map[string]Member) []Member {
	out := make([]Member, 0, len(room))
	for _, m := range room {
		out = append(out, m)
	}
	return out
}
