// Package protocol defines the wire types for the control socket (§6): a
// Command/Response tagged union exchanged as line-delimited JSON, with
// snake_case fields throughout.
package protocol

import (
	"encoding/json"
	"fmt"
)

// CommandType enumerates the request kinds a client may send. None carry
// payload fields.
type CommandType string

const (
	CmdToggle   CommandType = "toggle"
	CmdStart    CommandType = "start"
	CmdStop     CommandType = "stop"
	CmdCancel   CommandType = "cancel"
	CmdStatus   CommandType = "status"
	CmdShutdown CommandType = "shutdown"
	CmdFollow   CommandType = "follow"
)

var validCommands = map[CommandType]bool{
	CmdToggle: true, CmdStart: true, CmdStop: true,
	CmdCancel: true, CmdStatus: true, CmdShutdown: true, CmdFollow: true,
}

// Command is a client request. Encode/Decode round-trip exactly
// (Testable Property 10).
type Command struct {
	Type CommandType `json:"type"`
}

// DecodeCommand parses one line of JSON into a Command. An unknown `type`
// value fails with an error (§6: "unknown type values fail with error").
func DecodeCommand(line []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}
	if !validCommands[cmd.Type] {
		return Command{}, fmt.Errorf("unknown command type %q", cmd.Type)
	}
	return cmd, nil
}

func (c Command) Encode() ([]byte, error) { return json.Marshal(c) }

// ResponseType enumerates the response kinds a daemon may send.
type ResponseType string

const (
	RespOK            ResponseType = "ok"
	RespTranscription ResponseType = "transcription"
	RespStatus        ResponseType = "status"
	RespError         ResponseType = "error"
)

// Response is a daemon reply. Only the fields relevant to Type are
// populated; the rest are omitted from the wire form.
type Response struct {
	Type ResponseType `json:"type"`

	// RespTranscription
	Text string `json:"text,omitempty"`

	// RespStatus: always present on a status response (§6), even when
	// false, so a client can't mistake "not recording" for a missing
	// field.
	Recording   bool   `json:"recording"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelName   string `json:"model_name,omitempty"`

	// RespError
	Message string `json:"message,omitempty"`
}

func NewOK() Response { return Response{Type: RespOK} }

func NewTranscriptionResponse(text string) Response {
	return Response{Type: RespTranscription, Text: text}
}

func NewStatusResponse(recording, modelLoaded bool, modelName string) Response {
	return Response{Type: RespStatus, Recording: recording, ModelLoaded: modelLoaded, ModelName: modelName}
}

func NewErrorResponse(message string) Response {
	return Response{Type: RespError, Message: message}
}

func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("malformed response: %w", err)
	}
	return resp, nil
}

func (r Response) Encode() ([]byte, error) {
	if r.Type == RespStatus {
		return json.Marshal(r)
	}
	return json.Marshal(struct {
		Type    ResponseType `json:"type"`
		Text    string       `json:"text,omitempty"`
		Message string       `json:"message,omitempty"`
	}{r.Type, r.Text, r.Message})
}
