// Package train forwards fastText training commands to an engine.
//
// Arguments are passed through verbatim: flag names, defaults and validation
// belong to the engine. A Command is a typed convenience for building the
// argument list; Run accepts a raw list as well.
package train

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common fastText modes. Any non-empty mode is forwarded.
const (
	ModeSupervised = "supervised"
	ModeSkipgram   = "skipgram"
	ModeCBOW       = "cbow"
	ModeQuantize   = "quantize"
)

// Command is a mode followed by "-name value" flags.
type Command struct {
	Mode  string            `json:"mode" yaml:"mode"`
	Flags map[string]string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// ErrEmptyMode is returned for a command without a mode.
var ErrEmptyMode = errors.New("train: mode is required")

// Validate checks the command shape only; flag semantics are the engine's.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Mode) == "" {
		return ErrEmptyMode
	}
	for name := range c.Flags {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("train: empty flag name")
		}
	}
	return nil
}

// Argv renders the command as [mode, -flag, value, ...] with flags sorted by
// name. A flag with an empty value is rendered without one (boolean switch).
func (c Command) Argv() []string {
	out := []string{c.Mode}
	names := make([]string, 0, len(c.Flags))
	for n := range c.Flags {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		out = append(out, "-"+strings.TrimLeft(n, "-"))
		if v := c.Flags[n]; v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseArgv is the inverse of Argv for lists of the form
// [mode, -flag, value, ...]. A flag directly followed by another flag is
// taken as a switch with an empty value. Negative numbers are values.
func ParseArgv(argv []string) (Command, error) {
	if len(argv) == 0 {
		return Command{}, ErrEmptyMode
	}
	c := Command{Mode: argv[0], Flags: map[string]string{}}
	if strings.HasPrefix(c.Mode, "-") {
		return Command{}, fmt.Errorf("train: expected mode, got flag %q", c.Mode)
	}
	for i := 1; i < len(argv); i++ {
		a := argv[i]
		if !isFlag(a) {
			return Command{}, fmt.Errorf("train: unexpected argument %q", a)
		}
		name := strings.TrimLeft(a, "-")
		if i+1 < len(argv) && !isFlag(argv[i+1]) {
			c.Flags[name] = argv[i+1]
			i++
			continue
		}
		c.Flags[name] = ""
	}
	return c, c.Validate()
}

func isFlag(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	c := s[1]
	return !(c >= '0' && c <= '9') && c != '.'
}
