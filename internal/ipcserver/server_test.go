package ipcserver

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/voicetype/voicetype/internal/logger"
	"github.com/voicetype/voicetype/internal/observability"
	"github.com/voicetype/voicetype/internal/protocol"
)

type fakeHandlers struct {
	recording bool
	modelName string
	toggleErr error
	lastText  string
}

func (f *fakeHandlers) Start() error { f.recording = true; return nil }
func (f *fakeHandlers) Stop() error  { f.recording = false; return nil }
func (f *fakeHandlers) Toggle() (bool, error) {
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	f.recording = !f.recording
	return f.recording, nil
}
func (f *fakeHandlers) Cancel()            {}
func (f *fakeHandlers) IsRecording() bool  { return f.recording }
func (f *fakeHandlers) ModelName() string  { return f.modelName }
func (f *fakeHandlers) LastUtteranceText(ctx context.Context) (string, error) {
	return f.lastText, nil
}

func startTestServer(t *testing.T, h *fakeHandlers) (string, func()) {
	t.Helper()
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "voicetype.sock")

	events := observability.NewBroadcaster()
	srv := New(socketPath, h, events, logger.New(false))

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return socketPath, cancel
}

func sendCommand(t *testing.T, socketPath string, cmd protocol.Command) protocol.Response {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	encoded, err := cmd.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(append(encoded, '\n')); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp, err := protocol.DecodeResponse(trimNewline(buf[:n]))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func trimNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b[:len(b)-1]
	}
	return b
}

func TestStatusCommand(t *testing.T) {
	h := &fakeHandlers{modelName: "base.en"}
	socketPath, stop := startTestServer(t, h)
	defer stop()

	resp := sendCommand(t, socketPath, protocol.Command{Type: protocol.CmdStatus})
	if resp.Type != protocol.RespStatus {
		t.Fatalf("expected status response, got %+v", resp)
	}
	if resp.ModelName != "base.en" {
		t.Fatalf("expected model name base.en, got %q", resp.ModelName)
	}
}

func TestUnknownCommandTypeErrors(t *testing.T) {
	h := &fakeHandlers{}
	socketPath, stop := startTestServer(t, h)
	defer stop()

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`{"type":"bogus"}` + "\n")); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp, err := protocol.DecodeResponse(trimNewline(buf[:n]))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Type != protocol.RespError {
		t.Fatalf("expected error response, got %+v", resp)
	}
}

func TestToggleStart(t *testing.T) {
	h := &fakeHandlers{}
	socketPath, stop := startTestServer(t, h)
	defer stop()

	resp := sendCommand(t, socketPath, protocol.Command{Type: protocol.CmdToggle})
	if resp.Type != protocol.RespOK {
		t.Fatalf("expected ok response starting from idle, got %+v", resp)
	}
	if !h.recording {
		t.Fatal("expected handlers to be recording after toggle")
	}
}
