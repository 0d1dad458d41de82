package sink

import (
	"reflect"
	"testing"
)

func TestWtypeArgs(t *testing.T) {
	cases := map[PasteKey][]string{
		PasteKeyCtrlV:      {"-M", "ctrl", "-k", "v"},
		PasteKeyCtrlShiftV: {"-M", "ctrl", "-M", "shift", "-k", "v"},
	}
	for key, want := range cases {
		if got := wtypeArgs(key); !reflect.DeepEqual(got, want) {
			t.Fatalf("wtypeArgs(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestYdotoolKeySequence(t *testing.T) {
	seq, err := ydotoolKeySequence(PasteKeyCtrlShiftV)
	if err != nil {
		t.Fatal(err)
	}
	want := "29:1 42:1 47:1 47:0 42:0 29:0"
	if seq != want {
		t.Fatalf("ydotoolKeySequence() = %q, want %q", seq, want)
	}
}

func TestYdotoolKeySequenceUnknownKey(t *testing.T) {
	if _, err := ydotoolKeySequence("super+x"); err == nil {
		t.Fatal("expected error for key with no known evdev code")
	}
}
