package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey_Hash(t *testing.T) {
	k := NewKey("Max@Acme.DE", "+491512345678", "Schmidt", "10115")
	hash, ok := k.Hash()
	assert.True(t, ok)
	assert.Equal(t, "max@acme.de|+491512345678|schmidt|10115", hash)
	assert.True(t, k.Valid())
}

func TestNewKey_PartialSignal(t *testing.T) {
	k := NewKey("", "+491512345678", "", "")
	hash, ok := k.Hash()
	assert.True(t, ok)
	assert.Equal(t, "|+491512345678||", hash)
}

func TestNewKey_EmptyIsInvalid(t *testing.T) {
	k := NewKey("", "", "", "")
	assert.False(t, k.Valid())

	hash, ok := k.Hash()
	assert.False(t, ok)
	assert.Empty(t, hash)

	// Whitespace-only fields carry no signal either.
	k = NewKey("  ", "", " ", "")
	assert.False(t, k.Valid())
}

func TestSeen_FlagsSecondOccurrence(t *testing.T) {
	s := NewSeen()

	a := NewKey("a@b.de", "+491512345678", "Schmidt", "10115")
	assert.False(t, s.Check(a))
	assert.True(t, s.Check(a), "second occurrence is a duplicate")
	assert.True(t, s.Check(a), "third occurrence too")

	b := NewKey("other@b.de", "+491512345678", "Schmidt", "10115")
	assert.False(t, s.Check(b), "different composite is not a duplicate")
}

func TestSeen_CaseInsensitiveIdentity(t *testing.T) {
	s := NewSeen()
	assert.False(t, s.Check(NewKey("A@B.de", "", "SCHMIDT", "10115")))
	assert.True(t, s.Check(NewKey("a@b.DE", "", "schmidt", "10115")))
}

func TestSeen_InvalidKeysNeverMatch(t *testing.T) {
	s := NewSeen()

	empty := NewKey("", "", "", "")
	assert.False(t, s.Check(empty))
	assert.False(t, s.Check(empty), "empty composite is exempt from dedupe")
	assert.False(t, s.Check(NewKey("", "", "", "")))
}
