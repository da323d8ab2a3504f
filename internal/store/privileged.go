package store

// Privileged wraps the datastore handle that connects with the privileged
// role (row-level security bypass). Deployments may omit it, which disables
// all admin features; every consumer checks Get and answers 503 when absent,
// rather than dereferencing a nullable handle.
type Privileged struct {
	s *Store
}

// WithPrivileged wraps a connected privileged handle.
func WithPrivileged(s *Store) Privileged {
	return Privileged{s: s}
}

// NoPrivileged marks privileged access as not configured.
func NoPrivileged() Privileged {
	return Privileged{}
}

// Get returns the privileged handle, and whether one is configured.
func (p Privileged) Get() (*Store, bool) {
	return p.s, p.s != nil
}
