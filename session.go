package paramset

// Session models dialog-style editing: the working copy is a deep clone of
// the value store sharing the same immutable schema. Commit copies the
// edited values back into the original engine; Cancel discards them.
type Session struct {
	orig *Config
	work *Config
	done bool
}

// BeginEdit clones the value store into an edit session.
func (c *Config) BeginEdit() *Session {
	return &Session{
		orig: c,
		work: c.Clone(),
	}
}

// Config returns the session's working copy. Mutations on it do not touch
// the original engine until Commit.
func (s *Session) Config() *Config {
	return s.work
}

// Commit copies the working copy's values back into the original engine,
// equivalent to a full SetValues of the edited state. A finished session
// cannot be committed again.
func (s *Session) Commit() error {
	if s.done {
		return &SchemaError{Reason: "edit session already finished"}
	}
	if err := s.orig.CopyValuesFrom(s.work); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Cancel discards the working copy. Cancelling is idempotent and cancelling
// after Commit is a no-op.
func (s *Session) Cancel() {
	s.done = true
}
