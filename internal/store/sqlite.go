package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// SchemaVersion is the journal layout this package reads and writes.
const SchemaVersion = "1"

const schema = `
CREATE TABLE IF NOT EXISTS mail (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	tick INTEGER NOT NULL,
	status TEXT NOT NULL,
	from_user TEXT NOT NULL,
	from_server TEXT NOT NULL,
	to_user TEXT NOT NULL,
	to_server TEXT NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS attachments (
	mail_seq INTEGER NOT NULL REFERENCES mail(seq),
	pos INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (mail_seq, pos)
);
CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLite is a journal kept in a SQLite database. Entries from earlier runs
// stay in the file.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens the journal at path, creating the tables on first use.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	// A ":memory:" database exists once per connection.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// initSchema creates the tables and stamps or checks the schema version in
// one transaction.
func initSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	switch version, err := readMeta(tx, "schema_version"); {
	case err != nil:
		return err
	case version == "":
		if err := writeMeta(tx, "schema_version", SchemaVersion); err != nil {
			return err
		}
	case version != SchemaVersion:
		return fmt.Errorf("journal schema %s is not supported (want %s)", version, SchemaVersion)
	}
	return tx.Commit()
}

// Append records an entry and its attachments in one transaction.
func (s *SQLite) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m := e.Mail
	res, err := tx.Exec(`
		INSERT INTO mail (id, tick, status, from_user, from_server, to_user, to_server, subject, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, e.Tick, e.Status.String(), m.From.User, m.From.Server, m.To.User, m.To.Server, m.Subject, m.Body)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, a := range m.Attachments {
		if _, err := tx.Exec(`INSERT INTO attachments (mail_seq, pos, value) VALUES (?, ?, ?)`, seq, i, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Entries returns every entry in append order.
func (s *SQLite) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT seq, id, tick, status, from_user, from_server, to_user, to_server, subject, body
		FROM mail ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	var seqs []int64
	for rows.Next() {
		var (
			e      Entry
			seq    int64
			status string
		)
		m := &e.Mail
		if err := rows.Scan(&seq, &m.ID, &e.Tick, &status, &m.From.User, &m.From.Server,
			&m.To.User, &m.To.Server, &m.Subject, &m.Body); err != nil {
			rows.Close()
			return nil, err
		}
		st, ok := ParseStatus(status)
		if !ok {
			rows.Close()
			return nil, fmt.Errorf("unknown status %q for mail %s", status, m.ID)
		}
		e.Status = st
		entries = append(entries, e)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i, seq := range seqs {
		atts, err := s.attachmentsUnlocked(seq)
		if err != nil {
			return nil, err
		}
		entries[i].Mail.Attachments = atts
	}
	return entries, nil
}

// attachmentsUnlocked loads the attachments of one mail (caller must hold lock).
func (s *SQLite) attachmentsUnlocked(seq int64) ([]string, error) {
	rows, err := s.db.Query("SELECT value FROM attachments WHERE mail_seq = ? ORDER BY pos", seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of entries per status.
func (s *SQLite) Count() (map[Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM mail GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		if st, ok := ParseStatus(status); ok {
			out[st] = n
		}
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func readMeta(q querier, key string) (string, error) {
	var value string
	err := q.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func writeMeta(q querier, key, value string) error {
	_, err := q.Exec("INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value)
	return err
}

var _ Journal = (*SQLite)(nil)
var _ Journal = (*Memory)(nil)
