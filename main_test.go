package main

import (
	"DSB-project/config"
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunch_commands(t *testing.T) {
	l := launch{Program: "oetsort", Args: []string{"24"}, Hosts: 3, Port: 2100, Bin: "/opt/dsb"}
	var out bytes.Buffer
	cmds, err := l.commands(context.Background(), &out)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	for rank, cmd := range cmds {
		assert.Equal(t, "/opt/dsb/oetsort", cmd.Path)
		assert.Equal(t, []string{"/opt/dsb/oetsort", "24"}, cmd.Args)
		assert.Subset(t, cmd.Env, config.LaunchEnv(rank, 3, 2100))
	}
	assert.Contains(t, cmds[0].Env, "DBENCH_MANAGER=true")
	assert.Contains(t, cmds[0].Env, "DBENCH_PORT=2100")
	assert.Contains(t, cmds[2].Env, "DBENCH_MANAGER=false")
	assert.Contains(t, cmds[2].Env, "DBENCH_MANAGER_ADDRESS=localhost:2100")
}

func TestLaunch_invalid(t *testing.T) {
	_, err := launch{Program: "pi", Hosts: 0, Port: 2000}.commands(context.Background(), nil)
	assert.Equal(t, config.ErrInvalid, errors.Cause(err))
	_, err = launch{Program: "pi", Hosts: 2}.commands(context.Background(), nil)
	assert.Equal(t, config.ErrInvalid, errors.Cause(err))
}

func TestLaunch_run(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no true binary")
	}
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("no false binary")
	}
	assert.NoError(t, launch{Program: "true", Hosts: 3, Port: 2000}.run(context.Background(), nil))
	assert.Error(t, launch{Program: "false", Hosts: 2, Port: 2000}.run(context.Background(), nil))
}

func TestRun_usage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(nil, &out))
	assert.Contains(t, out.String(), "Usage: DSB-project [flags] <program> [param]...")
	assert.Contains(t, out.String(), "-hosts")
}
