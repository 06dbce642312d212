package stdlib

import (
	"strings"

	"nickandperla.net/epistle/internal/interp"
	"nickandperla.net/epistle/internal/mail"
)

// IO prints the body of a mail followed by its attachments, separated by
// spaces. "print" and "println" differ only in the trailing newline.
type IO struct {
	Output OutputWriter
}

// HandleMail implements interp.NativeHandler.
func (u *IO) HandleMail(it *interp.Interpreter, self mail.Address, m mail.Mail) {
	var nl string
	switch m.Subject {
	case "print":
	case "println":
		nl = "\n"
	default:
		unknown(it, self, m)
		return
	}
	parts := append([]string{m.Body}, m.Attachments...)
	if err := u.Output(strings.Join(parts, " ") + nl); err != nil {
		it.Logger().Warn("output failed", "user", self.String(), "error", err)
	}
}
