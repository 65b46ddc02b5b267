package runner

import (
	"DSB-project/config"
	"DSB-project/mpi-api"
	"DSB-project/mpi-api/mpi"
	"DSB-project/utils"
	"flag"
	"fmt"
	"io"

	"github.com/toolkits/pkg/logger"
)

// Body is the work of one rank.
type Body func(comm mpi_api.CommInterface, out io.Writer) error

// Program describes one executable of the suite.
type Program struct {
	Name string
	// Params names the positional arguments, all positive integers.
	Params []string
	// Standalone programs never join a group and get a nil comm.
	Standalone bool
	// Prepare checks the arguments against the configured group before
	// messaging starts and returns the work of every rank.
	Prepare func(args []int, cfg *config.Config) (Body, error)
}

// Rejection is printed as is before the program exits with status 1.
type Rejection struct {
	Text string
}

func (r *Rejection) Error() string {
	return r.Text
}

func Reject(format string, args ...interface{}) error {
	return &Rejection{Text: fmt.Sprintf(format, args...)}
}

func (p Program) usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: ./%s", p.Name)
	for _, param := range p.Params {
		fmt.Fprintf(w, " [%s]", param)
	}
	fmt.Fprintln(w)
}

/*
	Main runs the program with the command line args and returns the exit status.
	Arguments and group size are checked before messaging is initialised. Reports
	go to stdout, diagnostics to the logger.
*/
func Main(p Program, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet(p.Name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	cpuprofile := fs.String("cpuprofile", "", "write cpu profile `file`")
	memprofile := fs.String("memprofile", "", "write memory profile to `file`")
	fs.Usage = func() {
		p.usage(stdout)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != len(p.Params) {
		p.usage(stdout)
		fmt.Fprintf(stdout, "Please try again.\n")
		return 1
	}
	values, err := utils.ParseInts(fs.Args())
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v. Please try again.\n", err)
		return 1
	}
	for i, v := range values {
		if v <= 0 {
			fmt.Fprintf(stdout, "Error: Invalid argument for %s. Please try again.\n", p.Params[i])
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if err := logger.Init(logger.LogConfig{Type: "stderr", Level: cfg.LogLevel}); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	body, err := p.Prepare(values, cfg)
	if err != nil {
		if r, ok := err.(*Rejection); ok {
			fmt.Fprint(stdout, r.Text)
		} else {
			fmt.Fprintf(stdout, "Error: %v. Please try again.\n", err)
		}
		return 1
	}

	stop, err := utils.StartCPUProfile(*cpuprofile)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	defer stop()

	code := 0
	if p.Standalone {
		if err := body(nil, stdout); err != nil {
			logger.Errorf("%s: %v", p.Name, err)
			fmt.Fprintf(stdout, "Error: %v\n", err)
			return 1
		}
	} else {
		code = runRank(p, cfg, body, stdout)
	}
	if err := utils.WriteMemProfile(*memprofile); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return code
}

func runRank(p Program, cfg *config.Config, body Body, stdout io.Writer) int {
	host, err := mpi.Init(cfg)
	if err != nil {
		logger.Errorf("initialising messaging: %v", err)
		fmt.Fprintf(stdout, "Error encountered while initializing messaging and obtaining task information.\n")
		return 1
	}
	if err := body(host, stdout); err != nil {
		logger.Errorf("%s on process %d: %v", p.Name, host.GetId(), err)
		fmt.Fprintf(stdout, "Process %d: %v\nAborting program...\n", host.GetId(), err)
		host.Abort()
		return 1
	}
	if err := host.Shutdown(); err != nil {
		logger.Errorf("shutting down process %d: %v", host.GetId(), err)
		return 1
	}
	return 0
}
