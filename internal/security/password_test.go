package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	encoded, err := h.Hash("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", encoded)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := h.Verify(encoded, "s3cret!")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify(encoded, "wrong")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPasswordHasherSaltsEveryHash(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestPasswordHasherMalformed(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	tests := []string{
		"",
		"plaintext",
		"$2a$12$abcdefghijklmnopqrstuv",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$abc",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
	}

	for _, encoded := range tests {
		ok, err := h.Verify(encoded, "anything")
		require.ErrorIs(t, err, ErrMalformedHash, encoded)
		require.False(t, ok)
	}
}
