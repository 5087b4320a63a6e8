package live

import (
	"sync"

	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client is one authenticated live connection. Outbound frames are queued on
// a buffered channel drained by the transport's writer goroutine.
type Client struct {
	ID       string
	Identity user.Identity

	send    chan []byte
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool

	// rooms is owned by the Registry and guarded by its lock.
	rooms map[string]struct{}
}

func newClient(identity user.Identity, cfg Config) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Identity: identity,
		send:     make(chan []byte, cfg.SendBuffer),
		limiter:  rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.EventBurst),
		rooms:    make(map[string]struct{}),
	}
}

// Send returns the queue of encoded frames for this connection. It is closed
// when the connection is disconnected.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// enqueue queues frame without blocking. It reports false when the queue is
// full or closed.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Closed reports whether the connection has been disconnected.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) allow() bool {
	return c.limiter.Allow()
}
