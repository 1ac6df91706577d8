package session

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() Identity {
	return Identity{ID: "64b7f0c2a1b2c3d4e5f60718", Username: "alice", Email: "alice@example.com", IsAdmin: true}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec("test-secret", 0)

	token, exp, err := c.Encode(testIdentity())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	id := c.Decode(token)
	require.NotNil(t, id)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id.ID)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.True(t, id.IsAdmin)
	assert.NotEmpty(t, id.TokenID)
}

func TestCodec_TokenIDsAreUnique(t *testing.T) {
	c := NewCodec("test-secret", time.Hour)

	a, _, err := c.Encode(testIdentity())
	require.NoError(t, err)
	b, _, err := c.Encode(testIdentity())
	require.NoError(t, err)

	assert.NotEqual(t, c.Decode(a).TokenID, c.Decode(b).TokenID)
}

func TestCodec_Encode_RequiresCompleteIdentity(t *testing.T) {
	c := NewCodec("test-secret", time.Hour)

	_, _, err := c.Encode(Identity{ID: "1", Username: "bob"})
	assert.ErrorIs(t, err, ErrIncompleteIdentity)
}

func TestCodec_Decode_Rejects(t *testing.T) {
	c := NewCodec("test-secret", time.Hour)
	valid, _, err := c.Encode(testIdentity())
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, c.Decode(""))
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Nil(t, c.Decode("not-a-token"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewCodec("other-secret", time.Hour)
		assert.Nil(t, other.Decode(valid))
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		require.Len(t, parts, 3)
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"attacker","username":"x","email":"x@x","admin":true,"iss":"notes-api","exp":4102444800}`))
		assert.Nil(t, c.Decode(parts[0]+"."+payload+"."+parts[2]))
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"uid": "x", "iss": "notes-api", "exp": time.Now().Add(time.Hour).Unix(),
		})
		unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		assert.Nil(t, c.Decode(unsigned))
	})
}

func TestCodec_Decode_Expired(t *testing.T) {
	c := NewCodec("test-secret", time.Hour)
	issued := time.Now()
	c.now = func() time.Time { return issued }

	token, _, err := c.Encode(testIdentity())
	require.NoError(t, err)
	require.NotNil(t, c.Decode(token))

	c.now = func() time.Time { return issued.Add(2 * time.Hour) }
	assert.Nil(t, c.Decode(token))
}
