package confirm

import (
	"errors"
	"io"

	"github.com/manifoldco/promptui"
)

// Exec asks a yes/no question. It returns true right away when skip is set,
// which is how --yes is honoured. Answering anything but yes returns false.
func Exec(question string, skip bool) (bool, error) {
	return ExecWith(question, skip, nil, nil)
}

// ExecWith is Exec reading the answer from stdin and prompting to stdout;
// nil streams fall back to the terminal.
func ExecWith(question string, skip bool, stdin io.ReadCloser, stdout io.WriteCloser) (bool, error) {
	if skip {
		return true, nil
	}

	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
		Stdin:     stdin,
		Stdout:    stdout,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, err
	}
}
