// Package ipcclient is the thin client side of the control socket: one
// dial per command, used by every CLI subcommand that talks to a running
// daemon (§6 "IPC thin clients").
package ipcclient

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/voicetype/voicetype/internal/protocol"
)

// dialTimeout bounds the connection attempt; a daemon that isn't running
// should fail fast rather than hang the CLI.
const dialTimeout = 2 * time.Second

// Send connects to socketPath, writes cmd as one line, reads one response
// line, and closes the connection.
func Send(socketPath string, cmd protocol.Command) (protocol.Response, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("connect to daemon at %s: %w", socketPath, err)
	}
	defer conn.Close()

	encoded, err := cmd.Encode()
	if err != nil {
		return protocol.Response{}, err
	}
	if _, err := conn.Write(append(encoded, '\n')); err != nil {
		return protocol.Response{}, fmt.Errorf("write command: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return protocol.Response{}, fmt.Errorf("read response: %w", err)
		}
		return protocol.Response{}, fmt.Errorf("daemon closed connection without a response")
	}
	return protocol.DecodeResponse(scanner.Bytes())
}

// Follow connects to socketPath, requests `follow`, and invokes onEvent
// for each ObservabilityEvent until the connection closes or the caller
// returns an error from onEvent (which stops the loop and is returned).
func Follow(socketPath string, onEvent func(json.RawMessage) error) error {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w", socketPath, err)
	}
	defer conn.Close()

	cmd := protocol.Command{Type: protocol.CmdFollow}
	encoded, err := cmd.Encode()
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("write follow command: %w", err)
	}

	decoder := json.NewDecoder(conn)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil // EOF or connection closed: normal end of stream
		}
		if err := onEvent(raw); err != nil {
			return err
		}
	}
}
