package main

import (
	"DSB-project/runner"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSndrcv_singleProcess(t *testing.T) {
	t.Setenv("DBENCH_SIZE", "1")
	t.Setenv("DBENCH_MANAGER", "true")
	var out bytes.Buffer
	assert.Equal(t, 0, runner.Main(program, []string{"16", "3"}, &out))
}

func TestSndrcv_usage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, runner.Main(program, []string{"16"}, &out))
	assert.Equal(t, "Usage: ./sndrcv [size of array] [number of runs]\nPlease try again.\n", out.String())
}
