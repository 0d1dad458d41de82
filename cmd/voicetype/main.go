// Command voicetype is a Wayland voice-typing daemon: it listens to a
// microphone, transcribes speech locally with whisper.cpp, and delivers
// the result to the focused window via clipboard + synthetic paste.
package main

import (
	"os"

	"github.com/voicetype/voicetype/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
