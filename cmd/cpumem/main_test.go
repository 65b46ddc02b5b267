package main

import (
	"DSB-project/runner"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCpumem_rejectsInvertedSizes(t *testing.T) {
	t.Setenv("DBENCH_SIZE", "1")
	t.Setenv("DBENCH_MANAGER", "true")
	var out bytes.Buffer
	assert.Equal(t, 1, runner.Main(program, []string{"2", "1", "64", "32", "1", "1"}, &out))
	assert.Contains(t, out.String(), "maximum size of array must be greater than minimum size of array")
}

func TestCpumem_rejectsMissingArguments(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, runner.Main(program, []string{"2", "1", "64"}, &out))
	assert.Contains(t, out.String(), "Usage: ./cpumem [number of threads to use for CPU test]")
}
