package stdlib

import (
	"strconv"
	"strings"

	"nickandperla.net/epistle/internal/interp"
	"nickandperla.net/epistle/internal/mail"
)

// handleCmp compares the first two attachments and replies "true" or
// "false". Missing attachments compare as empty text.
func handleCmp(it *interp.Interpreter, self mail.Address, m mail.Mail) {
	a, b := arg(m, 0), arg(m, 1)
	var ok bool
	switch m.Subject {
	case "eq":
		ok = a == b
	case "neq":
		ok = a != b
	case "lt":
		ok = compare(a, b) < 0
	case "gt":
		ok = compare(a, b) > 0
	default:
		unknown(it, self, m)
		return
	}
	it.Send(mail.Reply(m, strconv.FormatBool(ok)))
}

func arg(m mail.Mail, i int) string {
	if i < len(m.Attachments) {
		return m.Attachments[i]
	}
	return ""
}

// compare orders two texts numerically when both are numbers and by bytes
// otherwise.
func compare(a, b string) int {
	x, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	y, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
