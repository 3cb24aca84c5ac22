package runner

import (
	"os"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/znetsec/znetscan/pkg/version"
)

// Options contains the configuration options for tuning a discovery scan
type Options struct {
	TimeoutMillis int
	Workers       int
	ServiceDB     string
	ARPTable      bool

	Output string
	JSON   bool

	NoColor bool
	Silent  bool
	Verbose bool

	Version bool
	IfList  bool
}

// Timeout returns the per-call network timeout
func (options *Options) Timeout() time.Duration {
	return time.Duration(options.TimeoutMillis) * time.Millisecond
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`znetscan discovers devices on the local /24 network: reachability, hostname, MAC address and well-known open TCP ports`)

	flagSet.CreateGroup("config", "Config",
		flagSet.IntVarP(&options.TimeoutMillis, "timeout", "t", 1000, "timeout in milliseconds for every network call"),
		flagSet.IntVarP(&options.Workers, "workers", "w", 255, "maximum concurrent host probes"),
		flagSet.StringVarP(&options.ServiceDB, "service-db", "sdb", "", "JSON file mapping ports to service names"),
		flagSet.BoolVarP(&options.ARPTable, "arp-table", "at", false, "consult the OS ARP cache for MAC addresses of segment peers"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write discovered devices to (JSON lines)"),
		flagSet.BoolVarP(&options.JSON, "json", "j", false, "print discovered devices as a JSON array instead of the tree view"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Silent, "silent", false, "show only device output"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.IfList, "if-list", "il", false, "print local interface inventory and exit"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}
