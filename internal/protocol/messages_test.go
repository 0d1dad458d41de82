package protocol

import "testing"

// TestCommandRoundTrip is half of Testable Property 10.
func TestCommandRoundTrip(t *testing.T) {
	for _, ct := range []CommandType{CmdToggle, CmdStart, CmdStop, CmdCancel, CmdStatus, CmdShutdown, CmdFollow} {
		cmd := Command{Type: ct}
		encoded, err := cmd.Encode()
		if err != nil {
			t.Fatalf("Encode(%s): %v", ct, err)
		}
		decoded, err := DecodeCommand(encoded)
		if err != nil {
			t.Fatalf("DecodeCommand(%s): %v", ct, err)
		}
		if decoded != cmd {
			t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded, cmd)
		}
	}
}

func TestCommandUnknownTypeErrors(t *testing.T) {
	if _, err := DecodeCommand([]byte(`{"type":"nonsense"}`)); err == nil {
		t.Fatal("expected an error for an unknown command type")
	}
	if _, err := DecodeCommand([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

// TestResponseRoundTrip is the other half of Testable Property 10.
func TestResponseRoundTrip(t *testing.T) {
	cases := []Response{
		NewOK(),
		NewTranscriptionResponse("the quick brown fox"),
		NewStatusResponse(true, true, "base.en"),
		NewStatusResponse(false, false, ""),
		NewErrorResponse("model not installed"),
	}
	for _, resp := range cases {
		encoded, err := resp.Encode()
		if err != nil {
			t.Fatalf("Encode(%+v): %v", resp, err)
		}
		decoded, err := DecodeResponse(encoded)
		if err != nil {
			t.Fatalf("DecodeResponse(%+v): %v", resp, err)
		}
		if decoded != resp {
			t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded, resp)
		}
	}
}

// TestScenarioS5WireShape mirrors the literal JSON in spec scenario S5.
func TestScenarioS5WireShape(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"toggle"}`))
	if err != nil || cmd.Type != CmdToggle {
		t.Fatalf("expected toggle command, got %+v, err=%v", cmd, err)
	}

	encoded, _ := NewOK().Encode()
	if string(encoded) != `{"type":"ok"}` {
		t.Fatalf("NewOK().Encode() = %s, want {\"type\":\"ok\"}", encoded)
	}
}

// TestStatusResponseAllFalseStillIncludesFields guards against
// "recording"/"model_loaded" silently dropping out of the wire payload
// when both are false (§6: a status response always carries both).
func TestStatusResponseAllFalseStillIncludesFields(t *testing.T) {
	encoded, err := NewStatusResponse(false, false, "").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"type":"status","recording":false,"model_loaded":false}`
	if string(encoded) != want {
		t.Fatalf("Encode() = %s, want %s", encoded, want)
	}
}
