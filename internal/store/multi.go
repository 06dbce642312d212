package store

import "errors"

// Multi fans entries out to several journals. Entries are read from the
// first one.
type Multi []Journal

// Append records e in every journal, joining their errors.
func (m Multi) Append(e Entry) error {
	var errs []error
	for _, j := range m {
		if err := j.Append(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Entries returns the entries of the first journal.
func (m Multi) Entries() ([]Entry, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].Entries()
}

// Close closes every journal, joining their errors.
func (m Multi) Close() error {
	var errs []error
	for _, j := range m {
		if err := j.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
