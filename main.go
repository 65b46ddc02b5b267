package main

import (
	"DSB-project/config"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// launch starts one process per rank of a local group.
type launch struct {
	Program string
	Args    []string
	Hosts   int
	Port    int
	Bin     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("DSB-project", flag.ContinueOnError)
	fs.SetOutput(stdout)
	hosts := fs.Int("hosts", 1, "choose number of hosts.")
	port := fs.Int("port", 2000, "Choose port of the manager.")
	bin := fs.String("bin", "", "directory holding the programs, default is the PATH")
	level := fs.String("loglevel", "WARNING", "log level of the launcher")
	fs.Usage = func() {
		fmt.Fprintf(stdout, "Usage: DSB-project [flags] <program> [param]...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 1
	}
	if err := logger.Init(logger.LogConfig{Type: "stderr", Level: *level}); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	l := launch{Program: fs.Arg(0), Args: fs.Args()[1:], Hosts: *hosts, Port: *port, Bin: *bin}
	if err := l.run(context.Background(), stdout); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return 0
}

func (l launch) path() (string, error) {
	if l.Bin != "" {
		return filepath.Join(l.Bin, l.Program), nil
	}
	path, err := exec.LookPath(l.Program)
	return path, errors.Wrapf(err, "finding %s", l.Program)
}

func (l launch) commands(ctx context.Context, stdout io.Writer) ([]*exec.Cmd, error) {
	if l.Hosts < 1 || l.Hosts > config.MaxSize {
		return nil, errors.Wrapf(config.ErrInvalid, "number of hosts %d outside [1, %d]", l.Hosts, config.MaxSize)
	}
	if l.Hosts > 1 && l.Port == 0 {
		return nil, errors.Wrap(config.ErrInvalid, "a group of several hosts needs a fixed manager port")
	}
	path, err := l.path()
	if err != nil {
		return nil, err
	}
	cmds := make([]*exec.Cmd, l.Hosts)
	for rank := range cmds {
		cmd := exec.CommandContext(ctx, path, l.Args...)
		cmd.Env = append(os.Environ(), config.LaunchEnv(rank, l.Hosts, l.Port)...)
		cmd.Stdout = stdout
		cmd.Stderr = os.Stderr
		cmds[rank] = cmd
	}
	return cmds, nil
}

// run starts every rank and waits for all of them. The first rank to fail
// stops the others.
func (l launch) run(ctx context.Context, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	cmds, err := l.commands(ctx, stdout)
	if err != nil {
		return err
	}
	for rank, cmd := range cmds {
		rank, cmd := rank, cmd
		if err := cmd.Start(); err != nil {
			cancel()
			g.Wait()
			return errors.Wrapf(err, "starting rank %d", rank)
		}
		logger.Debugf("started rank %d of %s as pid %d", rank, l.Program, cmd.Process.Pid)
		g.Go(func() error {
			return errors.Wrapf(cmd.Wait(), "rank %d", rank)
		})
	}
	return g.Wait()
}
