package util

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pterm/pterm"
)

// Command is one invocation of an external program, like the mysql client.
type Command struct {
	Name string
	Args []string
	// Env is added to the environment of the current process.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner starts external programs. Tests swap it for a recording fake.
type Runner interface {
	// Run attaches the program to the given streams, falling back to the
	// ones of the current process.
	Run(ctx context.Context, c Command) error
	// Output runs the program and returns stdout and stderr combined.
	Output(ctx context.Context, c Command) (string, error)
	LookPath(name string) (string, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := c.exec(ctx)
	cmd.Stdin = c.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr
	pterm.Debug.Printfln("Executing command: %s", strings.Join(cmd.Args, " "))
	return cmd.Run()
}

func (ExecRunner) Output(ctx context.Context, c Command) (string, error) {
	cmd := c.exec(ctx)
	cmd.Stdin = c.Stdin
	return RunWrappedCommand(cmd)
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (c Command) exec(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// RunWrappedCommand runs cmd, logging every output line as debug message, and
// returns the combined output.
func RunWrappedCommand(cmd *exec.Cmd) (output string, err error) {
	pterm.Debug.Printfln("Executing command: %s", strings.Join(cmd.Args, " "))

	// Get a pipe to read from standard out
	r, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}

	// Use the same pipe for standard error
	cmd.Stderr = cmd.Stdout

	// Make a new channel which will be used to ensure we get all output
	done := make(chan struct{})

	// Create a scanner which scans r in a line-by-line fashion
	scanner := bufio.NewScanner(r)

	var outputString strings.Builder

	go func() {
		// Read line by line and process it
		for scanner.Scan() {
			line := scanner.Text()
			outputString.WriteString(line)
			outputString.WriteString("\n")
			pterm.Debug.Printfln("Output: %s", line)
		}

		// We're all done, unblock the channel
		done <- struct{}{}
	}()

	if err = cmd.Start(); err != nil {
		return "", err
	}

	// Wait for all output to be processed before Wait closes the pipe
	<-done
	err = cmd.Wait()

	return outputString.String(), err
}
