package wordquiz

import (
	"log"
	"os"
)

var verboseMode bool

// logger prefixes every diagnostic line with the package name.
var logger = log.New(os.Stderr, "wordquiz: ", log.LstdFlags)

// SetVerbose toggles diagnostic logging for the whole package.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// VerboseLog writes a diagnostic line when verbose mode is on.
func VerboseLog(format string, v ...interface{}) {
	if verboseMode {
		logger.Printf(format, v...)
	}
}
