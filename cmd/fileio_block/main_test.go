package main

import (
	"DSB-project/Benchmarks"
	"DSB-project/runner"
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileioBlock_rejectsInvertedSizes(t *testing.T) {
	t.Setenv("DBENCH_SIZE", "1")
	t.Setenv("DBENCH_MANAGER", "true")
	var out bytes.Buffer
	assert.Equal(t, 1, runner.Main(program, []string{"8", "8", "2", "1"}, &out))
	assert.Contains(t, out.String(), "maximum block size must be greater than minimum block size")
}

func TestFileioBlock_singleProcess(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DBENCH_SIZE", "1")
	t.Setenv("DBENCH_MANAGER", "true")
	t.Setenv("DBENCH_DIR", dir)
	require.NoError(t, Benchmarks.GenerateFile(filepath.Join(dir, Benchmarks.UnsortedFile), 64, rand.New(rand.NewSource(2))))
	var out bytes.Buffer
	assert.Equal(t, 0, runner.Main(program, []string{"4", "16", "3", "2"}, &out))
	_, err := os.Stat(filepath.Join(dir, Benchmarks.BlocksFile))
	assert.True(t, os.IsNotExist(err))
}
