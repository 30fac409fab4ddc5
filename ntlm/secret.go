package ntlm

import "runtime"

// Secret owns password derived bytes. Dispose overwrites them with zeros;
// a finalizer does the same for secrets that are dropped without Dispose,
// but callers should not rely on it.
type Secret struct {
	b        []byte
	disposed bool
}

// NewSecret takes ownership of b. The caller must not keep using b.
func NewSecret(b []byte) *Secret {
	s := &Secret{b: b}
	runtime.SetFinalizer(s, (*Secret).wipe)
	return s
}

// Bytes returns the secret material, or nil once disposed.
func (s *Secret) Bytes() []byte {
	if s == nil || s.disposed {
		return nil
	}
	return s.b
}

// Disposed reports whether Dispose has been called.
func (s *Secret) Disposed() bool {
	return s == nil || s.disposed
}

// Dispose zeroes the secret. It is safe to call more than once.
func (s *Secret) Dispose() {
	if s == nil {
		return
	}
	s.wipe()
	runtime.SetFinalizer(s, nil)
}

func (s *Secret) wipe() {
	clear(s.b)
	s.b = nil
	s.disposed = true
}
