package main

import (
	"DSB-project/Benchmarks"
	"DSB-project/runner"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilegen_writesDigits(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DBENCH_SIZE", "4")
	t.Setenv("DBENCH_DIR", dir)
	t.Setenv("DBENCH_SEED", "11")
	var out bytes.Buffer
	assert.Equal(t, 0, runner.Main(program, []string{"500"}, &out))

	data, err := os.ReadFile(filepath.Join(dir, Benchmarks.UnsortedFile))
	require.NoError(t, err)
	assert.Len(t, data, 500)
	for _, c := range data {
		assert.True(t, c >= '0' && c <= '8', "unexpected character %q", c)
	}
}
