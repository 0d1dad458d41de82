package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/voicetype/voicetype/internal/diagnostics"
)

func runCheck(stdout, stderr io.Writer) int {
	checks := diagnostics.Run(context.Background())

	allOK := true
	for _, c := range checks {
		switch c.Status {
		case diagnostics.StatusOK:
			fmt.Fprintf(stdout, "%-30s ok\n", c.Name)
		case diagnostics.StatusWarning:
			allOK = false
			fmt.Fprintf(stdout, "%-30s warning: %s\n", c.Name, c.Detail)
		case diagnostics.StatusNotFound:
			allOK = false
			fmt.Fprintf(stdout, "%-30s not found\n", c.Name)
			if c.Remedy != "" {
				fmt.Fprintf(stdout, "  %s\n", c.Remedy)
			}
		}
	}

	if !allOK {
		fmt.Fprintln(stderr, "one or more dependencies need attention")
		return ExitFatal
	}
	return ExitOK
}
