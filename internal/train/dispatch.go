package train

import (
	"ftserve/internal/engine"
)

// Runner is the part of an engine that executes commands.
type Runner interface {
	RunCommand(argv []string) error
}

var _ Runner = engine.Engine(nil)

// Run prepends the program name to args and forwards them unchanged. It does
// not touch any loaded model; a model written by training must be loaded
// explicitly.
func Run(r Runner, args []string) error {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, engine.ProgramName)
	argv = append(argv, args...)
	return r.RunCommand(argv)
}

// RunCommand validates c and runs it.
func RunCommand(r Runner, c Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return Run(r, c.Argv())
}
