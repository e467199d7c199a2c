package service

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer answers whether the operator wants the displayed categories
// crawled. Anything but an affirmative answer aborts the run.
type Confirmer interface {
	Confirm(prompt string) bool
}

// TerminalConfirmer asks on an output stream and reads one line from an
// input stream. Only the word "yes" counts, case-insensitive, surrounding
// whitespace ignored.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (c *TerminalConfirmer) Confirm(prompt string) bool {
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" && err != nil {
		// Closed input stream is a decline, not a crash
		return false
	}

	return answer == "yes"
}
