package plate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC1D23", Normalize("abc-1d23"))
	assert.Equal(t, "ABC1234", Normalize(" AbC 12.34 "))
	assert.Equal(t, "", Normalize("---"))
}

func TestValidator_DefaultPatterns(t *testing.T) {
	v, err := NewValidator(DefaultPatterns)
	require.NoError(t, err)

	// Mercosul and pre-Mercosul formats.
	assert.True(t, v.Valid("ABC1D23"))
	assert.True(t, v.Valid("ABC1234"))

	assert.False(t, v.Valid("ABC12345"))
	assert.False(t, v.Valid("1BC1D23"))
	assert.False(t, v.Valid(""))
}

func TestNewValidator_RejectsBadPattern(t *testing.T) {
	_, err := NewValidator([]string{"["})
	assert.Error(t, err)
}

func TestValidator_CustomPattern(t *testing.T) {
	v, err := NewValidator([]string{`^[A-Z]{2}[0-9]{3}$`})
	require.NoError(t, err)

	assert.True(t, v.Valid("AB123"))
	assert.False(t, v.Valid("ABC1234"))
}
