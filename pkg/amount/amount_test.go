package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.5", Format(1_500_000, 6))
	assert.Equal(t, "0.000001", Format(1, 6))
	assert.Equal(t, "100", Format(100_000_000, 6))
	assert.Equal(t, "0", Format(0, 6))
}

func TestParse(t *testing.T) {
	got, err := Parse("2.25", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(2_250_000), got)

	got, err = Parse("100", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000_000), got)

	_, err = Parse("0.0000001", 6)
	assert.Error(t, err)

	_, err = Parse("abc", 6)
	assert.Error(t, err)
}
