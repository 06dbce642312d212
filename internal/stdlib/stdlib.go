// Package stdlib provides the std.com server: native users scripts can mail
// for output, arithmetic, comparison and iteration.
package stdlib

import (
	_ "embed"
	"fmt"

	"nickandperla.net/epistle/internal/interp"
	"nickandperla.net/epistle/internal/mail"
)

// Server is the name of the standard library server.
const Server = "std.com"

//go:embed REFERENCE.md
var Reference string

// OutputWriter writes text printed through <io@std.com>.
type OutputWriter func(text string) error

// Install queues the std.com server and its users. They exist once the
// interpreter next drains.
func Install(it *interp.Interpreter, out OutputWriter) {
	if out == nil {
		out = func(text string) error {
			fmt.Print(text)
			return nil
		}
	}
	it.AddServer(Server)
	it.RegisterNative(mail.Address{User: "io", Server: Server}, &IO{Output: out})
	it.RegisterNative(mail.Address{User: "math", Server: Server}, interp.NativeFunc(handleMath))
	it.RegisterNative(mail.Address{User: "cmp", Server: Server}, interp.NativeFunc(handleCmp))
	it.RegisterNative(mail.Address{User: "loop", Server: Server}, interp.NativeFunc(handleLoop))
}

// unknown logs a subject a std user does not implement.
func unknown(it *interp.Interpreter, self mail.Address, m mail.Mail) {
	it.Logger().Warn("unknown std function", "user", self.String(), "subject", m.Subject, "sender", m.From.String())
}
