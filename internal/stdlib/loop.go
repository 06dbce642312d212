package stdlib

import (
	"strconv"
	"strings"

	"nickandperla.net/epistle/internal/interp"
	"nickandperla.net/epistle/internal/mail"
)

// maxRange bounds the replies one "range" request may produce.
const maxRange = 1 << 16

// handleLoop replies once per item: "iterate" walks the attachments and
// "range" counts from the first attachment up to, not including, the second.
func handleLoop(it *interp.Interpreter, self mail.Address, m mail.Mail) {
	switch m.Subject {
	case "iterate":
		for _, a := range m.Attachments {
			it.Send(mail.Reply(m, a))
		}
	case "range":
		lo, errLo := strconv.Atoi(strings.TrimSpace(arg(m, 0)))
		hi, errHi := strconv.Atoi(strings.TrimSpace(arg(m, 1)))
		if errLo != nil || errHi != nil {
			it.Logger().Warn("bad range bounds", "user", self.String(), "attachments", m.Attachments)
			return
		}
		if hi-lo > maxRange {
			it.Logger().Warn("range too large", "user", self.String(), "from", lo, "to", hi)
			return
		}
		for i := lo; i < hi; i++ {
			it.Send(mail.Reply(m, strconv.Itoa(i)))
		}
	default:
		unknown(it, self, m)
	}
}
