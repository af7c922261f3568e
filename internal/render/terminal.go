package render

import (
	"fmt"
	"io"
	"strings"
)

// ANSI escape helpers.
const (
	csi         = "\033["
	clearScreen = csi + "2J"
	cursorHome  = csi + "H"
	hideCursor  = csi + "?25l"
	showCursor  = csi + "?25h"
	clearLine   = csi + "2K"
)

// Terminal renders frames in place. It is the only component that writes to
// the output: it keeps the previous frame, diffs line by line, and emits one
// batched write per draw. The screen is cleared only on the first draw or
// when the frame height changes.
type Terminal struct {
	out          io.Writer
	prev         []string
	cursorHidden bool
}

// NewTerminal creates a renderer writing to out (normally os.Stdout).
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Draw writes the frame, diffing against the previous one.
func (t *Terminal) Draw(lines []string) error {
	var buf strings.Builder

	if !t.cursorHidden {
		buf.WriteString(hideCursor)
		t.cursorHidden = true
	}

	if t.prev == nil || len(t.prev) != len(lines) {
		buf.WriteString(clearScreen)
		buf.WriteString(cursorHome)
		for i, line := range lines {
			moveTo(&buf, i+1)
			buf.WriteString(line)
		}
	} else {
		for i, line := range lines {
			if line == t.prev[i] {
				continue
			}
			moveTo(&buf, i+1)
			buf.WriteString(clearLine)
			buf.WriteString(line)
		}
	}

	t.prev = append(t.prev[:0], lines...)
	if buf.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(t.out, buf.String())
	return err
}

// Close restores the cursor.
func (t *Terminal) Close() error {
	if !t.cursorHidden {
		return nil
	}
	t.cursorHidden = false
	_, err := io.WriteString(t.out, showCursor)
	return err
}

func moveTo(buf *strings.Builder, row int) {
	fmt.Fprintf(buf, "%s%d;1H", csi, row)
}
