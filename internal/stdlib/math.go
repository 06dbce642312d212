package stdlib

import (
	"strconv"
	"strings"

	"nickandperla.net/epistle/internal/interp"
	"nickandperla.net/epistle/internal/mail"
)

// handleMath does integer arithmetic over the attachments. A reply with an
// empty body signals bad input.
func handleMath(it *interp.Interpreter, self mail.Address, m mail.Mail) {
	switch m.Subject {
	case "add":
		it.Send(mail.Reply(m, fold(m.Attachments, 0, func(acc, x int64) (int64, bool) { return acc + x, true })))
	case "mul":
		it.Send(mail.Reply(m, fold(m.Attachments, 1, func(acc, x int64) (int64, bool) { return acc * x, true })))
	case "div":
		if len(m.Attachments) == 0 {
			it.Send(mail.Reply(m, "0"))
			return
		}
		base, err := strconv.ParseInt(strings.TrimSpace(m.Attachments[0]), 10, 64)
		if err != nil {
			it.Send(mail.Reply(m, ""))
			return
		}
		it.Send(mail.Reply(m, fold(m.Attachments[1:], base, func(acc, x int64) (int64, bool) {
			if x == 0 {
				return 0, false
			}
			return acc / x, true
		})))
	case "ord":
		var points []string
		for _, r := range strings.Join(m.Attachments, "") {
			points = append(points, strconv.Itoa(int(r)))
		}
		first := "0"
		if len(points) > 0 {
			first = points[0]
		}
		it.Send(mail.Reply(m, first, points...))
	case "char":
		var sb strings.Builder
		for _, a := range m.Attachments {
			n, err := strconv.ParseInt(strings.TrimSpace(a), 10, 32)
			if err != nil || n < 0 {
				n = 0
			}
			sb.WriteRune(rune(n))
		}
		it.Send(mail.Reply(m, sb.String()))
	default:
		unknown(it, self, m)
	}
}

// fold parses every attachment as an int64 and combines them with f,
// starting from init. It returns "" if any step fails.
func fold(args []string, init int64, f func(acc, x int64) (int64, bool)) string {
	acc := init
	for _, a := range args {
		x, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return ""
		}
		var ok bool
		if acc, ok = f(acc, x); !ok {
			return ""
		}
	}
	return strconv.FormatInt(acc, 10)
}
