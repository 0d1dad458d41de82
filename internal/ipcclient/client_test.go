package ipcclient

import (
	"testing"

	"github.com/voicetype/voicetype/internal/protocol"
)

func TestSendFailsFastWhenDaemonNotRunning(t *testing.T) {
	_, err := Send("/tmp/voicetype-definitely-not-running.sock", protocol.Command{Type: protocol.CmdStatus})
	if err == nil {
		t.Fatal("expected an error connecting to a nonexistent socket")
	}
}
