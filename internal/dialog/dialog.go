// Package dialog provides the modal prompts shown during startup. The
// console implementation reads answers from a terminal.
package dialog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter shows modal prompts. Every call blocks until the user answers.
type Prompter interface {
	// Confirm shows an OK/Cancel prompt and reports whether OK was chosen.
	Confirm(title, text string) bool
	// Alert shows a message with a single OK button.
	Alert(title, text string)
	// AskDirectory asks for a directory, proposing initial. ok is false when
	// the user cancelled.
	AskDirectory(title, text, initial string) (dir string, ok bool)
}

// Console is a Prompter on a reader/writer pair, normally stdin/stdout.
type Console struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

// NewConsole returns a console prompter.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{reader: bufio.NewReader(in), out: out}
}

func (c *Console) header(title string) {
	fmt.Fprintf(c.out, "\n%s\n%s\n", title, strings.Repeat("─", len([]rune(title))))
}

func (c *Console) readLine() (string, bool) {
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Confirm implements Prompter. Anything other than y/yes/ok is Cancel,
// including end of input.
func (c *Console) Confirm(title, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.header(title)
	fmt.Fprintf(c.out, "%s\n[OK = y / Cancel = n] > ", text)
	answer, ok := c.readLine()
	if !ok {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "ok":
		return true
	default:
		return false
	}
}

// Alert implements Prompter.
func (c *Console) Alert(title, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.header(title)
	fmt.Fprintf(c.out, "%s\n[press Enter] ", text)
	c.readLine()
}

// AskDirectory implements Prompter. An empty answer accepts initial; "-"
// or end of input cancels.
func (c *Console) AskDirectory(title, text, initial string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.header(title)
	if initial != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", text, initial)
	} else {
		fmt.Fprintf(c.out, "%s: ", text)
	}
	answer, ok := c.readLine()
	if !ok || answer == "-" {
		return "", false
	}
	if answer == "" {
		if initial == "" {
			return "", false
		}
		return initial, true
	}
	return answer, true
}
