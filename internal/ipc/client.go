package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// DialClient connects to the daemon's control socket.
type DialClient struct {
	conn    net.Conn
	scanner *bufio.Scanner
	enc     *json.Encoder
	timeout time.Duration
}

// Dial connects to the daemon socket at path.
func Dial(path string, timeout time.Duration) (*DialClient, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w", path, err)
	}
	return &DialClient{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		enc:     json.NewEncoder(conn),
		timeout: timeout,
	}, nil
}

// Do sends a request and waits for the response.
func (c *DialClient) Do(req Request) (*Response, error) {
	c.conn.SetDeadline(time.Now().Add(c.timeout))
	if err := c.enc.Encode(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return nil, fmt.Errorf("daemon closed the connection")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != "" {
		return &resp, fmt.Errorf("daemon: %s", resp.Error)
	}
	return &resp, nil
}

// Close closes the connection.
func (c *DialClient) Close() error {
	return c.conn.Close()
}
