package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"
)

// EML writes every entry to a directory as an RFC 5322 message file. It
// keeps the entries of the current session in memory for Entries.
type EML struct {
	mu      sync.Mutex
	dir     string
	seq     int
	session Memory
}

// NewEML creates dir if needed and returns a journal writing into it.
// Numbering continues after any messages already there.
func NewEML(dir string) (*EML, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	existing, err := filepath.Glob(filepath.Join(dir, "*.eml"))
	if err != nil {
		return nil, err
	}
	seq := 0
	for _, path := range existing {
		prefix, _, _ := strings.Cut(filepath.Base(path), "-")
		if n, err := strconv.Atoi(prefix); err == nil && n > seq {
			seq = n
		}
	}
	return &EML{dir: dir, seq: seq}, nil
}

// Message builds the message written for an entry.
func Message(e Entry) *gomail.Message {
	m := e.Mail
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From.String())
	msg.SetHeader("To", m.To.String())
	msg.SetHeader("Subject", m.Subject)
	msg.SetHeader("Message-ID", "<"+m.ID+"@epistle>")
	msg.SetHeader("X-Epistle-Tick", strconv.Itoa(e.Tick))
	msg.SetHeader("X-Epistle-Status", e.Status.String())
	msg.SetBody("text/plain", m.Body)
	for i, a := range m.Attachments {
		text := a
		msg.Attach(fmt.Sprintf("attachment-%d.txt", i+1), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, text)
			return err
		}))
	}
	return msg
}

// Append writes the entry as the next numbered .eml file.
func (j *EML) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	name := filepath.Join(j.dir, fmt.Sprintf("%06d-%s.eml", j.seq, e.Status))
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := Message(e).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return j.session.Append(e)
}

// Entries returns the entries appended since the journal was opened.
func (j *EML) Entries() ([]Entry, error) {
	return j.session.Entries()
}

// Close is a no-op; every message is closed once written.
func (j *EML) Close() error {
	return nil
}

var _ Journal = (*EML)(nil)
