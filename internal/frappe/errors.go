package frappe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the document an operation targets does not exist.
var ErrNotFound = errors.New("not found")

// ExecutionError is a script or command that ran but exited non-zero.
type ExecutionError struct {
	Op       string
	Site     string
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if len(msg) > 500 {
		msg = "..." + msg[len(msg)-500:]
	}
	if e.Site != "" {
		return fmt.Sprintf("%s on %s exited %d: %s", e.Op, e.Site, e.ExitCode, msg)
	}
	return fmt.Sprintf("%s exited %d: %s", e.Op, e.ExitCode, msg)
}
