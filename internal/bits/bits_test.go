package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	testCases := []struct {
		width    int
		expected uint64
	}{
		{0, 0},
		{1, 0x1},
		{4, 0xf},
		{32, 0xffffffff},
		{64, ^uint64(0)},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Mask(tc.width), "width %d", tc.width)
	}
}

func TestTruncateAndFits(t *testing.T) {
	assert.Equal(t, uint64(0xa), Truncate(0x1a, 4))
	assert.True(t, Fits(15, 4))
	assert.False(t, Fits(16, 4))
	assert.True(t, Fits(^uint64(0), 64))
}

func TestSlice(t *testing.T) {
	assert.Equal(t, uint64(0b110), Slice(0b1011010, 4, 2))
	assert.Equal(t, uint64(0), Slice(0xff, 1, 2))
}

func TestExtend(t *testing.T) {
	assert.Equal(t, uint64(0x0f), Zext(0x0f, 8))
	assert.Equal(t, uint64(0xfe), Sext(0b1110, 4, 8))
	assert.Equal(t, uint64(0x06), Sext(0b0110, 4, 8))
}

func TestNBits(t *testing.T) {
	assert.Equal(t, 1, NBits(0))
	assert.Equal(t, 1, NBits(1))
	assert.Equal(t, 3, NBits(4))
	assert.Equal(t, 8, NBits(255))

	assert.Equal(t, 0, SelNBits(1))
	assert.Equal(t, 1, SelNBits(2))
	assert.Equal(t, 2, SelNBits(4))
	assert.Equal(t, 3, SelNBits(5))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0b1010", Format(10, 4))
	assert.Equal(t, "0b00000011", Format(3, 8))
	assert.Equal(t, "0x3", Format(3, 0))
}
