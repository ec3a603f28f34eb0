package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestIssueAndParse(t *testing.T) {
	m, err := NewManager("test-secret")
	assert.NoError(t, err)

	signed, err := m.Issue("acc-123", "client")
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)

	claims, err := m.Parse(signed)
	assert.NoError(t, err)
	assert.Equal(t, "acc-123", claims.Subject)
	assert.Equal(t, "client", claims.Role)
}

func TestParseRejectsWrongKey(t *testing.T) {
	issuer, _ := NewManager("key-a")
	verifier, _ := NewManager("key-b")

	signed, err := issuer.Issue("acc-123", "client")
	assert.NoError(t, err)

	_, err = verifier.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m, _ := NewManager("test-secret")
	m.ttl = -time.Minute

	signed, err := m.Issue("acc-123", "client")
	assert.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m, _ := NewManager("test-secret")

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	m, _ := NewManager("test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "acc-123"})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresKey(t *testing.T) {
	_, err := NewManager("")
	assert.Error(t, err)
}
