package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTags(t *testing.T) {
	assert.Equal(t, StringArray{"promo", "vip"}, NewTags([]string{" promo ", "vip", "promo", ""}))
	assert.Empty(t, NewTags(nil))
}

func TestStringArrayContains(t *testing.T) {
	tags := NewTags([]string{"promo", "vip"})
	assert.True(t, tags.Contains("vip"))
	assert.False(t, tags.Contains("beta"))
}

func TestStringArrayScan(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	// legacy plain-string rows wrap into a single-element list
	require.NoError(t, a.Scan("promo"))
	assert.Equal(t, StringArray{"promo"}, a)

	require.NoError(t, a.Scan(`"quoted"`))
	assert.Equal(t, StringArray{"quoted"}, a)
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringArray{"x"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, v)
}
