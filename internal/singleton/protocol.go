package singleton

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"
)

const ack = "ACK"

// maxRequestSize bounds a single request line.
const maxRequestSize = 1 << 20

// Request is a launch request handed from a second launch to the owner.
type Request struct {
	ShowMode string   `json:"show_mode"`
	Argv     []string `json:"argv"`
	Cwd      string   `json:"cwd"`
	PID      int      `json:"pid"`
	// Ping asks only whether the owner is responsive; it is never delivered.
	Ping bool `json:"ping,omitempty"`
}

// writeRequest sends one request line and waits for the acknowledgement.
func writeRequest(conn net.Conn, req Request, timeout time.Duration) error {
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading acknowledgement: %w", err)
	}
	if strings.TrimSpace(line) != ack {
		return fmt.Errorf("unexpected reply %q", strings.TrimSpace(line))
	}
	return nil
}

// readRequest reads one request line and acknowledges it.
func readRequest(conn net.Conn, timeout time.Duration) (Request, error) {
	var req Request
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return req, fmt.Errorf("setting deadline: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return req, fmt.Errorf("reading request: %w", err)
		}
		return req, fmt.Errorf("reading request: connection closed")
	}
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		return req, fmt.Errorf("decoding request: %w", err)
	}
	if _, err := conn.Write([]byte(ack + "\n")); err != nil {
		return req, fmt.Errorf("sending acknowledgement: %w", err)
	}
	return req, nil
}
