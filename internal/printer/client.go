package printer

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"comandero/internal/core"
)

var (
	ErrNoAddress        = errors.New("printer address not configured")
	ErrConnectionFailed = errors.New("printer connection failed")
	ErrTimeout          = errors.New("printer operation timed out")
)

// Client talks to the kitchen thermal printer over raw TCP (port 9100
// style). The printer is one physical device that cannot interleave two
// tickets, so every Print and Check holds mu for the whole exchange; the
// scheduler and the on-demand operations all share one Client.
type Client struct {
	mu          sync.Mutex
	defaultPort int
}

func NewClient(defaultPort int) *Client {
	if defaultPort == 0 {
		defaultPort = 9100
	}
	return &Client{defaultPort: defaultPort}
}

// Print replays one ticket's directive stream against the printer at
// address. The connection lives for exactly one ticket: dial, write, close.
// Timeout bounds both the dial and the write.
func (c *Client) Print(address string, timeout time.Duration, directives []core.Directive) error {
	if address == "" {
		return ErrNoAddress
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := net.DialTimeout("tcp", c.normalize(address), timeout)
	if err != nil {
		return classify(err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write(Encode(directives)); err != nil {
		return classify(err)
	}
	return nil
}

// Check verifies liveness by opening and closing a connection, printing
// nothing.
func (c *Client) Check(address string, timeout time.Duration) error {
	if address == "" {
		return ErrNoAddress
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := net.DialTimeout("tcp", c.normalize(address), timeout)
	if err != nil {
		return classify(err)
	}
	return conn.Close()
}

// normalize appends the default port when the configured address has none.
// Operators usually type just the IP into the settings screen.
func (c *Client) normalize(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, strconv.Itoa(c.defaultPort))
}

func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}
