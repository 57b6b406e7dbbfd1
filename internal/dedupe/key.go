// Package dedupe implements the composite-key identity used to detect
// repeat candidates, and the intra-batch layer of the three-layer dedupe.
package dedupe

import "strings"

// Key is the composite dedupe identity of a candidate, built from email,
// normalized phone, last name, and postal code. A Key with none of the four
// parts is invalid: there is not enough signal to call anything a duplicate,
// so invalid keys are exempt from every dedupe layer and never persisted.
type Key struct {
	hash  string
	valid bool
}

// NewKey builds a Key from the four identity fields. Email and last name are
// lowercased and trimmed; phone is expected to be normalized already.
func NewKey(email, phone, lastName, postalCode string) Key {
	parts := []string{
		strings.ToLower(strings.TrimSpace(email)),
		strings.TrimSpace(phone),
		strings.ToLower(strings.TrimSpace(lastName)),
		strings.TrimSpace(postalCode),
	}

	valid := false
	for _, p := range parts {
		if p != "" {
			valid = true
			break
		}
	}

	return Key{hash: strings.Join(parts, "|"), valid: valid}
}

// Valid reports whether the key carries enough signal to deduplicate on.
func (k Key) Valid() bool { return k.valid }

// Hash returns the composite hash string and whether it may be persisted.
// Invalid keys yield ok=false; callers store NULL in that case.
func (k Key) Hash() (hash string, ok bool) {
	if !k.valid {
		return "", false
	}
	return k.hash, true
}

// Seen tracks composite keys within a single batch (dedupe layer 1).
// Batches are processed sequentially, so no locking is needed.
type Seen struct {
	keys map[string]struct{}
}

// NewSeen creates an empty intra-batch key set.
func NewSeen() *Seen {
	return &Seen{keys: make(map[string]struct{})}
}

// Check records k and reports whether it was already present. Invalid keys
// are never recorded and never match.
func (s *Seen) Check(k Key) (duplicate bool) {
	if !k.valid {
		return false
	}
	if _, ok := s.keys[k.hash]; ok {
		return true
	}
	s.keys[k.hash] = struct{}{}
	return false
}
