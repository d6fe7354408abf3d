package profile

// OperationList is a read-only live view over a session's recorded
// operations, backed by the session's guarded storage rather than a copy.
// Reads reflect appends made after the view was obtained.
type OperationList struct {
	session *Session
}

// Len returns the number of recorded operations.
func (l *OperationList) Len() int {
	l.session.mu.Lock()
	defer l.session.mu.Unlock()
	return len(l.session.ops)
}

// At returns the operation at index i in append order.
// It panics if i is out of range, matching slice semantics.
func (l *OperationList) At(i int) OperationMetrics {
	l.session.mu.Lock()
	defer l.session.mu.Unlock()
	return l.session.ops[i]
}

// Snapshot returns a copy of the current sequence for iteration without
// holding the session lock.
func (l *OperationList) Snapshot() []OperationMetrics {
	l.session.mu.Lock()
	defer l.session.mu.Unlock()
	out := make([]OperationMetrics, len(l.session.ops))
	copy(out, l.session.ops)
	return out
}
