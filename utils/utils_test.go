package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 3, Min(3, 7))
	assert.Equal(t, 7, Max(3, 7))
	assert.Equal(t, int32(-2), Min(int32(5), int32(-2)))
	assert.Equal(t, "b", Max("a", "b"))
}

func TestStringToIpAndPort(t *testing.T) {
	ip, port, err := StringToIpAndPort("192.168.1.12:2255")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.12", ip)
	assert.Equal(t, 2255, port)

	ip, port, err = StringToIpAndPort(":2000")
	require.NoError(t, err)
	assert.Equal(t, "localhost", ip)
	assert.Equal(t, 2000, port)

	_, _, err = StringToIpAndPort("localhost")
	assert.Error(t, err)
	_, _, err = StringToIpAndPort("localhost:99999")
	assert.Error(t, err)
}

func TestParseInts(t *testing.T) {
	v, err := ParseInts([]string{"24", "-3", "0"})
	require.NoError(t, err)
	assert.Equal(t, []int{24, -3, 0}, v)

	_, err = ParseInts([]string{"24", "x"})
	assert.EqualError(t, err, `argument 2 ("x") is not a number`)
}

func TestSplitRange(t *testing.T) {
	covered := 0
	for rank := 0; rank < 3; rank++ {
		low, high := SplitRange(10, 3, rank)
		assert.Equal(t, covered, low)
		covered = high
	}
	assert.Equal(t, 10, covered)
	low, high := SplitRange(10, 3, 2)
	assert.Equal(t, 6, low)
	assert.Equal(t, 10, high)
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	stop, err := StartCPUProfile(filepath.Join(dir, "cpu.prof"))
	require.NoError(t, err)
	stop()
	require.NoError(t, WriteMemProfile(filepath.Join(dir, "mem.mprof")))

	for _, name := range []string{"cpu.prof", "mem.mprof"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}

	stop, err = StartCPUProfile("")
	require.NoError(t, err)
	stop()
}
