// Package interp runs epistle programs: it owns the server and user
// registry, the deferred queues and mail delivery.
package interp

import (
	"log/slog"
	"maps"
	"slices"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/expr"
	"nickandperla.net/epistle/internal/mail"
	"nickandperla.net/epistle/internal/store"
)

// NativeHandler is a user implemented in Go. It may send replies through the
// interpreter; they are delivered on a later tick.
type NativeHandler interface {
	HandleMail(it *Interpreter, self mail.Address, m mail.Mail)
}

// NativeFunc adapts a function to NativeHandler.
type NativeFunc func(it *Interpreter, self mail.Address, m mail.Mail)

// HandleMail calls f.
func (f NativeFunc) HandleMail(it *Interpreter, self mail.Address, m mail.Mail) {
	f(it, self, m)
}

// User is an installed mailbox.
type User struct {
	Address   mail.Address
	Native    NativeHandler
	Reactions []expr.Reaction
	Env       *expr.Environment
}

// Server owns a set of users.
type Server struct {
	Name  string
	Users map[string]*User
}

// UserDef is a user waiting to be installed on the next tick.
type UserDef struct {
	Address   mail.Address
	Native    NativeHandler
	Reactions []expr.Reaction
}

// Stats counts what a run did.
type Stats struct {
	Ticks     int
	Delivered int
	Dropped   int
	Unmatched int
	Sent      int
}

// Interpreter executes instructions and drains the deferred queues.
// It is not safe for concurrent use.
type Interpreter struct {
	servers   map[string]*Server
	modifiers expr.Modifiers
	logger    *slog.Logger
	journal   store.Journal
	maxTicks  int

	serverQueue []string
	userQueue   []UserDef
	mailQueue   []mail.Mail

	anonEnv *expr.Environment
	stats   Stats
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithModifiers replaces the modifier registry.
func WithModifiers(m expr.Modifiers) Option {
	return func(it *Interpreter) { it.modifiers = m }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(it *Interpreter) { it.logger = l }
}

// WithJournal records every delivery in j.
func WithJournal(j store.Journal) Option {
	return func(it *Interpreter) { it.journal = j }
}

// WithMaxTicks aborts a drain after n ticks. Zero means no limit.
func WithMaxTicks(n int) Option {
	return func(it *Interpreter) { it.maxTicks = n }
}

// New creates a new Interpreter with the given options.
func New(opts ...Option) *Interpreter {
	it := &Interpreter{
		servers:   make(map[string]*Server),
		modifiers: expr.DefaultModifiers(),
		logger:    slog.New(slog.DiscardHandler),
		anonEnv:   expr.NewEnvironment(),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// AddServer queues a server for creation.
func (it *Interpreter) AddServer(name string) {
	it.serverQueue = append(it.serverQueue, name)
}

// AddUser queues a scripted user for creation.
func (it *Interpreter) AddUser(name, server string, reactions []expr.Reaction) {
	it.userQueue = append(it.userQueue, UserDef{
		Address:   mail.Address{User: name, Server: server},
		Reactions: reactions,
	})
}

// RegisterNative queues a native user for creation.
func (it *Interpreter) RegisterNative(addr mail.Address, h NativeHandler) {
	it.userQueue = append(it.userQueue, UserDef{Address: addr, Native: h})
}

// Send queues a mail for delivery.
func (it *Interpreter) Send(m mail.Mail) {
	it.logger.Debug("mail queued", "id", m.ID, "from", m.From.String(), "to", m.To.String(), "subject", m.Subject)
	it.stats.Sent++
	it.mailQueue = append(it.mailQueue, m)
}

// Modifier looks a modifier up by name.
func (it *Interpreter) Modifier(name string) (expr.Modifier, bool) {
	m, ok := it.modifiers[name]
	return m, ok
}

// Logger returns the interpreter's logger.
func (it *Interpreter) Logger() *slog.Logger {
	return it.logger
}

// Env returns the environment of the anonymous actor, which persists
// between calls to Execute.
func (it *Interpreter) Env() *expr.Environment {
	return it.anonEnv
}

// Stats returns the counters accumulated so far.
func (it *Interpreter) Stats() Stats {
	return it.stats
}

// ResetStats zeroes the counters. Journal tick numbers restart with them.
func (it *Interpreter) ResetStats() {
	it.stats = Stats{}
}

// Lookup returns an installed user.
func (it *Interpreter) Lookup(addr mail.Address) (*User, bool) {
	srv, ok := it.servers[addr.Server]
	if !ok {
		return nil, false
	}
	u, ok := srv.Users[addr.User]
	return u, ok
}

// Servers returns the installed server names in sorted order.
func (it *Interpreter) Servers() []string {
	return slices.Sorted(maps.Keys(it.servers))
}

// Users returns the names of the users installed on server, sorted.
func (it *Interpreter) Users(server string) []string {
	srv, ok := it.servers[server]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(srv.Users))
}

// Pending reports whether any queue holds work.
func (it *Interpreter) Pending() bool {
	return len(it.serverQueue) > 0 || len(it.userQueue) > 0 || len(it.mailQueue) > 0
}

// Run executes block in order as self, against env. It does not drain the
// queues.
func (it *Interpreter) Run(block []expr.Instruction, self mail.Address, env *expr.Environment) error {
	return expr.RunBlock(expr.NewScope(it, self, env), block)
}

// Execute drains work left from setup, runs prog as the anonymous actor and
// drains the queues until they are empty. A failed run leaves nothing
// queued behind it.
func (it *Interpreter) Execute(prog []expr.Instruction) error {
	err := it.Drain()
	if err == nil {
		err = it.Run(prog, mail.Anonymous, it.anonEnv)
	}
	if err == nil {
		err = it.Drain()
	}
	if err != nil {
		it.discard()
	}
	return err
}

// discard drops all queued servers, users and mail.
func (it *Interpreter) discard() {
	n := len(it.serverQueue) + len(it.userQueue) + len(it.mailQueue)
	if n > 0 {
		it.logger.Debug("queues discarded", "items", n)
	}
	it.serverQueue, it.userQueue, it.mailQueue = nil, nil, nil
}

// Drain runs ticks until every queue is empty. Each tick installs all
// pending servers, then all pending users, then delivers all pending mail.
func (it *Interpreter) Drain() error {
	start := it.stats.Ticks
	for it.Pending() {
		if it.maxTicks > 0 && it.stats.Ticks-start >= it.maxTicks {
			return diag.Runtime(diag.TickLimit, "queues still busy after %d ticks", it.maxTicks)
		}
		if err := it.step(); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) step() error {
	it.stats.Ticks++
	servers, users, mails := it.serverQueue, it.userQueue, it.mailQueue
	it.serverQueue, it.userQueue, it.mailQueue = nil, nil, nil
	it.logger.Debug("tick", "tick", it.stats.Ticks, "servers", len(servers), "users", len(users), "mail", len(mails))

	for _, name := range servers {
		it.installServer(name)
	}
	for _, u := range users {
		it.installUser(u)
	}
	for _, m := range mails {
		if err := it.deliver(m); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) installServer(name string) *Server {
	if srv, ok := it.servers[name]; ok {
		return srv
	}
	srv := &Server{Name: name, Users: make(map[string]*User)}
	it.servers[name] = srv
	it.logger.Debug("server created", "server", name)
	return srv
}

func (it *Interpreter) installUser(p UserDef) {
	srv := it.installServer(p.Address.Server)
	if _, ok := srv.Users[p.Address.User]; ok {
		it.logger.Debug("user replaced", "user", p.Address.String())
	} else {
		it.logger.Debug("user created", "user", p.Address.String())
	}
	srv.Users[p.Address.User] = &User{
		Address:   p.Address,
		Native:    p.Native,
		Reactions: p.Reactions,
		Env:       expr.NewEnvironment(),
	}
}

func (it *Interpreter) deliver(m mail.Mail) error {
	u, ok := it.Lookup(m.To)
	if !ok {
		it.stats.Dropped++
		it.logger.Debug("mail dropped", "id", m.ID, "to", m.To.String())
		return it.record(m, store.Dropped)
	}

	env := u.Env
	env.Set("subject", expr.NewText(m.Subject))
	env.Set("content", expr.NewText(m.Body))
	env.Set("sender", addressValue(m.From))
	env.Set("self", addressValue(u.Address))
	env.Set("attachments", expr.TextTuple(m.Attachments...))

	if u.Native != nil {
		it.stats.Delivered++
		if err := it.record(m, store.Delivered); err != nil {
			return err
		}
		u.Native.HandleMail(it, u.Address, m)
		return nil
	}

	for _, r := range u.Reactions {
		if !r.Match(m.Subject) {
			continue
		}
		it.stats.Delivered++
		it.logger.Debug("mail delivered", "id", m.ID, "to", m.To.String(), "pattern", r.Pattern)
		if err := it.record(m, store.Delivered); err != nil {
			return err
		}
		return it.Run(r.Body, u.Address, env)
	}

	it.stats.Unmatched++
	it.logger.Debug("mail unmatched", "id", m.ID, "to", m.To.String(), "subject", m.Subject)
	return it.record(m, store.Unmatched)
}

func (it *Interpreter) record(m mail.Mail, status store.Status) error {
	if it.journal == nil {
		return nil
	}
	if err := it.journal.Append(store.Entry{Tick: it.stats.Ticks, Status: status, Mail: m}); err != nil {
		return &diag.RuntimeError{Kind: diag.Journal, Msg: m.ID, Err: err}
	}
	return nil
}

func addressValue(a mail.Address) expr.Address {
	return expr.Address{User: expr.NewText(a.User), Server: expr.NewText(a.Server)}
}
