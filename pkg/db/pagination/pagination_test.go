package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	offset, limit := Normalize(0, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)

	offset, limit = Normalize(3, 20)
	assert.Equal(t, 40, offset)
	assert.Equal(t, 20, limit)

	offset, limit = Normalize(-5, 100000)
	assert.Equal(t, 0, offset)
	assert.Equal(t, MaxPageSize, limit)
}
