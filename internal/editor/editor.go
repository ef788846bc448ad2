// Package editor launches an external editor positioned at a source
// line. Launches are fire-and-forget: the viewer does not wait for the
// editor to exit.
package editor

import (
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/allocview/pkg/utils"
)

// Opener opens an editor at a file and line.
type Opener interface {
	Open(path string, line int) error
}

// CommandOpener runs a configured editor command. The command may use
// {file} and {line} placeholders; without placeholders the file and
// "+line" are appended in the conventional form.
type CommandOpener struct {
	command string
	logger  utils.Logger
}

// NewCommandOpener creates a CommandOpener. An empty command falls back
// to $EDITOR, then to vi.
func NewCommandOpener(command string, logger utils.Logger) *CommandOpener {
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = "vi"
	}
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &CommandOpener{command: command, logger: logger}
}

// Open starts the editor process and returns without waiting for it.
func (o *CommandOpener) Open(path string, line int) error {
	args := o.buildArgs(path, line)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	o.logger.Debug("opening editor: %s", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the process in the background so it never zombies.
	go func() { _ = cmd.Wait() }()
	return nil
}

func (o *CommandOpener) buildArgs(path string, line int) []string {
	fields := strings.Fields(o.command)
	if !strings.Contains(o.command, "{file}") {
		return append(fields, "+"+strconv.Itoa(line), path)
	}

	args := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "{file}", path)
		f = strings.ReplaceAll(f, "{line}", strconv.Itoa(line))
		args = append(args, f)
	}
	return args
}
