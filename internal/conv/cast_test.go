package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)

	got, err = IntToUint32(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxInt32), got)

	_, err = IntToUint32(-1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestIntToUint32_TooLarge(t *testing.T) {
	if math.MaxInt == math.MaxInt32 {
		t.Skip("int is 32 bits")
	}
	v := uint64(math.MaxUint32) + 1
	_, err := IntToUint32(int(v))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}
