package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/MrSnakeDoc/domon/internal/gateway"
)

const loginHint = "Run `domon login` and export DOMON_SESSION_COOKIE, then try again."

type notifier struct {
	out    io.Writer
	errOut io.Writer
}

func (c *CLI) notice() notifier {
	return notifier{out: c.out, errOut: c.errOut}
}

func (n notifier) success(msg string) {
	if msg == "" {
		return
	}
	_, _ = color.New(color.FgGreen).Fprintln(n.out, msg)
}

func (n notifier) info(msg string) {
	_, _ = color.New(color.FgCyan).Fprintln(n.out, msg)
}

func (n notifier) warn(msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(n.errOut, msg)
}

// failure prints err the way the dashboard would show it. An expired
// session gets the login hint.
func (n notifier) failure(err error) {
	red := color.New(color.FgRed, color.Bold)
	if errors.Is(err, gateway.ErrAuthExpired) {
		_, _ = red.Fprintln(n.errOut, gateway.Notice(err))
		_, _ = color.New(color.FgYellow).Fprintln(n.errOut, loginHint)
		return
	}

	msg := gateway.Notice(err)
	if msg == "" || !isGatewayError(err) {
		msg = fmt.Sprintf("Error: %v", err)
	}
	_, _ = red.Fprintln(n.errOut, msg)
}

func isGatewayError(err error) bool {
	var (
		verr *gateway.ValidationError
		oerr *gateway.OperationError
		nerr *gateway.NetworkError
		lerr *gateway.LoadError
	)
	return errors.Is(err, gateway.ErrNotConfirmed) ||
		errors.As(err, &verr) ||
		errors.As(err, &oerr) ||
		errors.As(err, &nerr) ||
		errors.As(err, &lerr)
}
