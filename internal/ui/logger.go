// Package ui provides terminal styling, search-result formatting and
// markdown rendering for qmd's command-line frontend.
package ui

import (
	"os"

	"github.com/charmbracelet/log"
)

// InitLogger configures the shared charmbracelet/log logger for CLI use.
func InitLogger() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	log.SetReportTimestamp(false)
}

// SetDebug toggles debug-level logging.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
