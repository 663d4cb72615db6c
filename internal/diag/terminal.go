package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/jacob-carlborg/ddc/internal/position"
	"golang.org/x/term"
)

// TerminalSink builds a Sink that writes human-readable diagnostic lines to
// w, colorizing the severity label when w is a real terminal wide enough to
// bother (narrower than 20 columns, e.g. a pipe reporting 0, gets plain
// text — there is no point colorizing something nothing will render).
func TerminalSink(w io.Writer) Sink {
	color := false

	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width >= 20 {
			color = term.IsTerminal(int(f.Fd()))
		}
	}

	return func(loc position.Position, sev Severity, message string, supplemental bool) {
		label := sev.String()
		if color {
			label = colorize(sev, label)
		}

		indent := ""
		if supplemental {
			indent = "  "
		}

		fmt.Fprintf(w, "%s%s: %s: %s\n", indent, loc.String(), label, message)
	}
}

func colorize(sev Severity, label string) string {
	code := "36" // cyan for deprecation
	switch sev {
	case Error:
		code = "31"
	case Warning:
		code = "33"
	}

	return "\x1b[" + code + "m" + label + "\x1b[0m"
}
