package live

import (
	"sort"
	"sync"
)

// Registry tracks room membership and the connections of each identity.
// Only its own methods mutate membership, so a client's room set and the
// room member sets always agree.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[*Client]struct{}
	users   map[string]map[*Client]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
		users:   make(map[string]map[*Client]struct{}),
	}
}

// Add registers a connection under its identity.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c.ID] = c
	conns := r.users[c.Identity.ID]
	if conns == nil {
		conns = make(map[*Client]struct{})
		r.users[c.Identity.ID] = conns
	}
	conns[c] = struct{}{}
}

// Join adds c to roomID. Joining twice is a no-op. It reports false for an
// unregistered connection.
func (r *Registry) Join(c *Client, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.ID]; !ok {
		return false
	}
	members := r.rooms[roomID]
	if members == nil {
		members = make(map[*Client]struct{})
		r.rooms[roomID] = members
	}
	members[c] = struct{}{}
	c.rooms[roomID] = struct{}{}
	return true
}

// Leave removes c from roomID. Leaving a room c is not in is a no-op.
func (r *Registry) Leave(c *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, roomID)
}

func (r *Registry) leaveLocked(c *Client, roomID string) {
	delete(c.rooms, roomID)
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// Drop removes c from every room and from the identity index, returning the
// rooms it was in. ok is false when c was already dropped.
func (r *Registry) Drop(c *Client) (rooms []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.ID]; !ok {
		return nil, false
	}
	delete(r.clients, c.ID)

	rooms = make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	for _, roomID := range rooms {
		r.leaveLocked(c, roomID)
	}

	if conns := r.users[c.Identity.ID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(r.users, c.Identity.ID)
		}
	}

	sort.Strings(rooms)
	return rooms, true
}

// Rooms returns the rooms c is a member of.
func (r *Registry) Rooms(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	return rooms
}

// IsMember reports whether c is in roomID.
func (r *Registry) IsMember(c *Client, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][c]
	return ok
}

// Members returns the connections in roomID.
func (r *Registry) Members(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Client, 0, len(r.rooms[roomID]))
	for c := range r.rooms[roomID] {
		members = append(members, c)
	}
	return members
}

// Broadcast queues frame for every member of roomID except exclude, which
// may be nil. It returns the number of connections that accepted the frame.
func (r *Registry) Broadcast(roomID string, frame []byte, exclude *Client) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for c := range r.rooms[roomID] {
		if c == exclude {
			continue
		}
		if c.enqueue(frame) {
			delivered++
		}
	}
	return delivered
}

// Fanout queues frame once for every connection sharing at least one of
// roomIDs, except exclude.
func (r *Registry) Fanout(roomIDs []string, frame []byte, exclude *Client) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Client]struct{})
	delivered := 0
	for _, roomID := range roomIDs {
		for c := range r.rooms[roomID] {
			if c == exclude {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			if c.enqueue(frame) {
				delivered++
			}
		}
	}
	return delivered
}

// SendToUsers queues frame once for every connection of the given identities.
func (r *Registry) SendToUsers(frame []byte, userIDs ...string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Client]struct{})
	delivered := 0
	for _, userID := range userIDs {
		for c := range r.users[userID] {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			if c.enqueue(frame) {
				delivered++
			}
		}
	}
	return delivered
}

// UserConnections returns the number of open connections of userID.
func (r *Registry) UserConnections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// Clients returns every registered connection.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

// ClientCount returns the number of registered connections.
func (r *Registry) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// RoomCount returns the number of non-empty rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// RoomSize returns the number of connections in roomID.
func (r *Registry) RoomSize(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
