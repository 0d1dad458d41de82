package cli

import (
	"fmt"
	"io"

	"github.com/voicetype/voicetype/internal/ipcclient"
	"github.com/voicetype/voicetype/internal/protocol"
)

var subcommandToType = map[string]protocol.CommandType{
	"start":  protocol.CmdStart,
	"stop":   protocol.CmdStop,
	"toggle": protocol.CmdToggle,
	"cancel": protocol.CmdCancel,
	"status": protocol.CmdStatus,
}

// runControlCommand sends one IPC command to a running daemon and prints
// its response, mirroring §6's response-kind table.
func runControlCommand(sub string, g globalFlags, stdout, stderr io.Writer) int {
	cmdType, ok := subcommandToType[sub]
	if !ok {
		fmt.Fprintf(stderr, "unknown control command %q\n", sub)
		return ExitUsageError
	}

	resp, err := ipcclient.Send(g.socketPath, protocol.Command{Type: cmdType})
	if err != nil {
		fmt.Fprintf(stderr, "failed to reach daemon at %s: %v\n", g.socketPath, err)
		return ExitIPCError
	}

	switch resp.Type {
	case protocol.RespError:
		fmt.Fprintln(stderr, resp.Message)
		return ExitFatal
	case protocol.RespTranscription:
		if !g.quiet && resp.Text != "" {
			fmt.Fprintln(stdout, resp.Text)
		}
	case protocol.RespStatus:
		state := "idle"
		if resp.Recording {
			state = "recording"
		}
		fmt.Fprintf(stdout, "%s (model: %s)\n", state, resp.ModelName)
	case protocol.RespOK:
		if !g.quiet {
			fmt.Fprintln(stdout, "ok")
		}
	}
	return ExitOK
}
