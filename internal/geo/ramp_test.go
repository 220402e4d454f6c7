package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRampBlackToWhite(t *testing.T) {
	table := BuildRamp(3, RGB{0, 0, 0}, RGB{255, 255, 255})
	require.Len(t, table, 3)

	want := []float64{0, 128, 255}
	for i, c := range table {
		for _, ch := range []uint8{c.R, c.G, c.B} {
			assert.InDelta(t, want[i], float64(ch), 1, "class %d", i)
		}
	}
}

func TestBuildRampKeepsEndpoints(t *testing.T) {
	table := BuildRamp(DefaultClassCount, DefaultLowColor, DefaultHighColor)
	require.Len(t, table, DefaultClassCount)

	assert.Equal(t, DefaultLowColor, table[0])
	assert.Equal(t, DefaultHighColor, table[len(table)-1])
	for i := 1; i < len(table); i++ {
		assert.GreaterOrEqual(t, table[i].R, table[i-1].R)
		assert.GreaterOrEqual(t, table[i].B, table[i-1].B)
	}
}

func TestBuildRampDecreasingChannel(t *testing.T) {
	low := RGB{R: 255, G: 10, B: 100}
	high := RGB{R: 0, G: 200, B: 100}
	table := BuildRamp(5, low, high)

	assert.Equal(t, low, table[0])
	assert.Equal(t, high, table[4])
	for i, c := range table {
		assert.LessOrEqual(t, c.R, uint8(255), "class %d", i)
		assert.GreaterOrEqual(t, c.G, uint8(10), "class %d", i)
		assert.Equal(t, uint8(100), c.B, "class %d", i)
		if i > 0 {
			assert.Less(t, c.R, table[i-1].R)
		}
	}
}

func TestBuildRampSmall(t *testing.T) {
	assert.Nil(t, BuildRamp(0, RGB{}, RGB{}))
	assert.Equal(t, ColorTable{{1, 2, 3}}, BuildRamp(1, RGB{1, 2, 3}, RGB{9, 9, 9}))
}

func TestClassifyEndpoints(t *testing.T) {
	r := ValueRange{Minimum: 2.5, Maximum: 87.25}
	for _, n := range []int{1, 2, 3, 10, 30} {
		c, err := Classify(r.Minimum, r, n)
		require.NoError(t, err)
		assert.Equal(t, 0, c, "min with %d classes", n)

		c, err = Classify(r.Maximum, r, n)
		require.NoError(t, err)
		assert.Equal(t, n-1, c, "max with %d classes", n)
	}
}

func TestClassifyClamps(t *testing.T) {
	r := ValueRange{Minimum: 0, Maximum: 100}

	c, err := Classify(-50, r, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = Classify(1e9, r, 10)
	require.NoError(t, err)
	assert.Equal(t, 9, c)

	c, err = Classify(55, r, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, c)
}

func TestClassifyMonotonic(t *testing.T) {
	r := ValueRange{Minimum: -12.5, Maximum: 140}
	prev := -1
	for v := -30.0; v <= 160; v += 0.37 {
		c, err := Classify(v, r, 30)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c, prev, "value %v", v)
		prev = c
	}
}

func TestClassifyErrors(t *testing.T) {
	_, err := Classify(7, ValueRange{Minimum: 5, Maximum: 5}, 30)
	assert.ErrorIs(t, err, ErrDegenerateRange)

	_, err = Classify(math.NaN(), ValueRange{Minimum: 0, Maximum: 1}, 30)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Classify(0.5, ValueRange{Minimum: 0, Maximum: 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRampIsCached(t *testing.T) {
	a := Ramp(12, DefaultLowColor, DefaultHighColor)
	b := Ramp(12, DefaultLowColor, DefaultHighColor)
	require.Len(t, a, 12)
	assert.Same(t, &a[0], &b[0])

	c := Ramp(13, DefaultLowColor, DefaultHighColor)
	assert.Len(t, c, 13)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#0000e0", DefaultLowColor.Hex())
	assert.Equal(t, "#ccccff", DefaultHighColor.Hex())

	c, err := ParseHex("#ccccff")
	require.NoError(t, err)
	assert.Equal(t, DefaultHighColor, c)

	c, err = ParseHex("03F")
	require.NoError(t, err)
	assert.Equal(t, RGB{0x00, 0x33, 0xff}, c)

	_, err = ParseHex("#12345")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseHex("#zzzzzz")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestColorTableColor(t *testing.T) {
	table := BuildRamp(3, RGB{0, 0, 0}, RGB{255, 255, 255})
	assert.Equal(t, table[0], table.Color(-4))
	assert.Equal(t, table[2], table.Color(99))
	assert.Equal(t, RGB{}, ColorTable(nil).Color(0))
}
