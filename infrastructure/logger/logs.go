package logger

import (
	"fmt"
	"os"
	"sync"
)

// backendLog is the logging backend used to create all subsystem loggers.
var backendLog = NewBackend()

var (
	subsystemsMutex sync.Mutex
	subsystems      = make(map[string]*Logger)
)

// RegisterSubSystem returns a logger for the given subsystem tag, creating
// it if this is the first request for that tag. Packages are expected to
// call this once from their log.go and share the returned logger.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()

	logger, ok := subsystems[subsystem]
	if !ok {
		logger = backendLog.Logger(subsystem)
		subsystems[subsystem] = logger
	}
	return logger
}

// InitLog attaches log file and error log file to the backend log and starts
// it. It is expected to be called exactly once, by the daemon entry point.
func InitLog(logFile, errLogFile string) {
	err := backendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s\n",
			logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = backendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s\n",
			errLogFile, LevelWarn, err)
		os.Exit(1)
	}
	err = backendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger: %s\n", err)
		os.Exit(1)
	}
	err = backendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s\n", err)
		os.Exit(1)
	}
}

// SetLogLevels sets the logging level for all of the registered subsystems.
func SetLogLevels(level Level) {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()

	for _, logger := range subsystems {
		logger.SetLevel(level)
	}
}

// SetLogLevelsString sets the logging level for all registered subsystems
// from a level string. It returns false if the string does not parse as a
// level.
func SetLogLevelsString(level string) bool {
	parsed, ok := LevelFromString(level)
	if !ok {
		return false
	}
	SetLogLevels(parsed)
	return true
}

// Close shuts the backend log down, flushing any pending writes.
func Close() {
	backendLog.Close()
}
