package subscriber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	_, err = NormalizeEmail("")
	assert.Error(t, err)

	_, err = NormalizeEmail("not-an-email")
	assert.Error(t, err)

	_, err = NormalizeEmail("a@b@c")
	assert.Error(t, err)
}

func TestNewTokenIsUniqueAndOpaque(t *testing.T) {
	a := NewToken()
	b := NewToken()
	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"subscribed", "unsubscribed", "bounced"} {
		_, err := parseStatus(valid)
		assert.NoError(t, err, valid)
	}
	_, err := parseStatus("deleted")
	assert.Error(t, err)
}
