package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/rootnet/rootd/infrastructure/logger"
	"github.com/rootnet/rootd/version"
)

const (
	defaultConfigFilename = "rootd.conf"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "rootd.log"
	defaultErrLogFilename = "rootd_err.log"
	defaultLogLevel       = "info"
	defaultBlockInterval  = time.Second
)

var (
	// DefaultHomeDir is the default home directory for rootd.
	DefaultHomeDir = appDataDir("rootd", false)

	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)
)

// Config defines the configuration options for rootd.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	ShowVersion   bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir       string        `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir        string        `long:"logdir" description:"Directory to log output"`
	DebugLevel    string        `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	BlockInterval time.Duration `long:"blockinterval" description:"Interval between block ticks"`
	BlockEmission uint64        `long:"blockemission" description:"Per-block emission budget in base units (0 means the built-in default)"`
}

// LogFile returns the path of the main log file.
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the error log file.
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1) Start with a default config with sane settings
//  2) Pre-parse the command line to check for an alternative config file
//  3) Load configuration file overwriting defaults with any specified options
//  4) Parse CLI options and overwrite/add any specified options
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ConfigFile:    defaultConfigFile,
		DataDir:       defaultDataDir,
		LogDir:        defaultLogDir,
		DebugLevel:    defaultLogLevel,
		BlockInterval: defaultBlockInterval,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified.
	preCfg := *cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		return nil, err
	}

	if preCfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		fmt.Printf("%s version %s\n", appName, version.Version())
		os.Exit(0)
	}

	parser := flags.NewParser(cfg, flags.Default)
	if preCfg.ConfigFile != "" {
		err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			// A missing default config file is fine. A missing
			// explicitly specified one is not.
			if !os.IsNotExist(errors.Cause(err)) || preCfg.ConfigFile != defaultConfigFile {
				return nil, errors.Wrapf(err, "error parsing config file %s", preCfg.ConfigFile)
			}
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); !ok || flagsErr.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}

	if _, ok := logger.LevelFromString(cfg.DebugLevel); !ok {
		return nil, errors.Errorf("the specified debuglevel (%s) is invalid", cfg.DebugLevel)
	}
	if cfg.BlockInterval <= 0 {
		return nil, errors.New("blockinterval must be positive")
	}

	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	err = os.MkdirAll(cfg.LogDir, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	return cfg, nil
}
