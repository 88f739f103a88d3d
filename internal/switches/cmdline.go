package switches

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// noValue marks an optional-value switch given without "=value"; it reads
// back as "".
const noValue = "-"

// CommandLine is a parsed process command line. It is never mutated after
// Parse; AppendSwitchWithValue returns a new value.
type CommandLine struct {
	program  string
	raw      []string
	switches map[string]string
	args     []string
}

func newFlagSet(output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("vitalis", pflag.ContinueOnError)
	fs.SortFlags = false
	if output != nil {
		fs.SetOutput(output)
	}
	for _, s := range boolSwitches {
		fs.Bool(s.name, false, s.usage)
	}
	for _, s := range valueSwitches {
		fs.String(s.name, "", s.usage)
	}
	for _, s := range optionalValueSwitches {
		fs.String(s.name, "", s.usage)
		fs.Lookup(s.name).NoOptDefVal = noValue
	}
	return fs
}

// Parse interprets argv (including the program name in argv[0]).
// Unknown switches are tolerated: they never take the following argument as
// a value, read back through HasSwitch and survive in Argv.
func Parse(argv []string) (*CommandLine, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command line")
	}
	known, unknown := splitKnown(argv[1:])
	fs := newFlagSet(io.Discard)
	if err := fs.Parse(known); err != nil {
		return nil, fmt.Errorf("parsing command line: %w", err)
	}

	cl := &CommandLine{
		program:  argv[0],
		raw:      append([]string(nil), argv[1:]...),
		switches: unknown,
		args:     fs.Args(),
	}
	fs.Visit(func(f *pflag.Flag) {
		value := f.Value.String()
		if f.Value.Type() == "bool" {
			if value != "true" {
				return
			}
			value = ""
		}
		if value == noValue {
			value = ""
		}
		cl.switches[f.Name] = value
	})
	return cl, nil
}

// splitKnown separates switches the flag set defines from the rest. Known
// switches are normalized to the "--name" form; a value switch written as
// "--name value" keeps its value. Everything after "--" is passed through.
func splitKnown(args []string) (known []string, unknown map[string]string) {
	unknown = make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			known = append(known, args[i:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			known = append(known, arg)
			continue
		}
		body := strings.TrimLeft(arg, "-")
		name, value, hasValue := strings.Cut(body, "=")
		if !isKnown(name) {
			unknown[name] = value
			continue
		}
		known = append(known, "--"+body)
		if !hasValue && takesValue(name) && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, unknown
}

func isKnown(name string) bool {
	for _, s := range boolSwitches {
		if s.name == name {
			return true
		}
	}
	for _, s := range optionalValueSwitches {
		if s.name == name {
			return true
		}
	}
	return takesValue(name)
}

func takesValue(name string) bool {
	for _, s := range valueSwitches {
		if s.name == name {
			return true
		}
	}
	return false
}

// Usage writes the switch reference to w.
func Usage(w io.Writer) {
	fs := newFlagSet(w)
	fmt.Fprintln(w, "Usage: vitalis [switches] [urls or files...]")
	fs.PrintDefaults()
}

// Program returns argv[0].
func (c *CommandLine) Program() string { return c.program }

// HasSwitch reports whether the switch was given.
func (c *CommandLine) HasSwitch(name string) bool {
	_, ok := c.switches[name]
	return ok
}

// SwitchValue returns the switch value, or "" when absent or valueless.
func (c *CommandLine) SwitchValue(name string) string {
	return c.switches[name]
}

// Switches returns a copy of the present switches and their values.
func (c *CommandLine) Switches() map[string]string {
	out := make(map[string]string, len(c.switches))
	for k, v := range c.switches {
		out[k] = v
	}
	return out
}

// Args returns the loose (non-switch) arguments.
func (c *CommandLine) Args() []string {
	return append([]string(nil), c.args...)
}

// Argv returns the full command line, program first, suitable for
// relaunching the process.
func (c *CommandLine) Argv() []string {
	return append([]string{c.program}, c.raw...)
}

// AppendSwitchWithValue returns a copy with --name=value appended. When the
// same switch is repeated the last occurrence wins.
func (c *CommandLine) AppendSwitchWithValue(name, value string) *CommandLine {
	out := &CommandLine{
		program:  c.program,
		raw:      append(append([]string(nil), c.raw...), "--"+name+"="+value),
		switches: c.Switches(),
		args:     c.Args(),
	}
	out.switches[name] = value
	return out
}

// String renders the command line for logs.
func (c *CommandLine) String() string {
	return strings.Join(c.Argv(), " ")
}
