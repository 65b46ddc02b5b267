package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/koding/multiconfig"
	"github.com/pkg/errors"
)

const (
	EnvPrefix = "DBENCH"
	// EnvFile names an optional toml file read after the environment.
	EnvFile = EnvPrefix + "_CONFIG"

	MaxSize = 255
)

var ErrInvalid = errors.New("invalid launch configuration")

// Config describes how a process joins its group. Program parameters are
// positional arguments and do not live here.
type Config struct {
	Size           int    `default:"1"`
	Manager        bool   `default:"true"`
	ManagerAddress string `default:"localhost:2000"`
	Port           int    `default:"0"`
	JoinTimeout    int    `default:"30"`
	LogLevel       string `default:"WARNING"`
	Trace          string
	Seed           int64
	Dir            string `default:"."`
}

// Load reads defaults, then DBENCH_* variables, then the given toml files.
func Load(fpaths ...string) (*Config, error) {
	loaders := []multiconfig.Loader{
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{Prefix: EnvPrefix, CamelCase: true},
	}
	if f := os.Getenv(EnvFile); f != "" {
		fpaths = append(fpaths, f)
	}
	for _, fpath := range fpaths {
		if !strings.HasSuffix(fpath, ".toml") && !strings.HasSuffix(fpath, ".conf") {
			return nil, errors.Errorf("config file %s invalid, valid file exts: .conf,.toml", fpath)
		}
		loaders = append(loaders, &multiconfig.TOMLLoader{Path: fpath})
	}

	m := multiconfig.DefaultLoader{
		Loader:    multiconfig.MultiLoader(loaders...),
		Validator: multiconfig.MultiValidator(&multiconfig.RequiredValidator{}),
	}
	c := new(Config)
	if err := m.Load(c); err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Size < 1 || c.Size > MaxSize {
		return errors.Wrapf(ErrInvalid, "group size %d outside [1, %d]", c.Size, MaxSize)
	}
	if c.Size == 1 && !c.Manager {
		return errors.Wrap(ErrInvalid, "a group of one must be its own manager")
	}
	if c.JoinTimeout <= 0 {
		return errors.Wrapf(ErrInvalid, "join timeout %d", c.JoinTimeout)
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "ERROR", "FATAL":
	default:
		return errors.Wrapf(ErrInvalid, "log level %q", c.LogLevel)
	}
	return nil
}

func (c *Config) JoinWait() time.Duration {
	return time.Duration(c.JoinTimeout) * time.Second
}

// LaunchEnv gives the variables that make a child process join a local group
// of size ranks as the given rank.
func LaunchEnv(rank, size, managerPort int) []string {
	port := 0
	if rank == 0 {
		port = managerPort
	}
	return []string{
		fmt.Sprintf("%s_SIZE=%d", EnvPrefix, size),
		fmt.Sprintf("%s_MANAGER=%t", EnvPrefix, rank == 0),
		fmt.Sprintf("%s_MANAGER_ADDRESS=localhost:%d", EnvPrefix, managerPort),
		fmt.Sprintf("%s_PORT=%d", EnvPrefix, port),
	}
}
