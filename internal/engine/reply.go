package engine

import "fmt"

// Reply is one interactive response. Terminal replies end the USSD session;
// non-terminal replies prompt the user for more input.
type Reply struct {
	Text     string
	Terminal bool
}

// Con formats a continuation reply.
func Con(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...)}
}

// End formats a terminal reply.
func End(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...), Terminal: true}
}

// Render produces the wire form: the text prefixed with exactly "CON " or
// "END ".
func (r Reply) Render() string {
	if r.Terminal {
		return "END " + r.Text
	}
	return "CON " + r.Text
}
