package brew

import (
	"github.com/charmbracelet/log"

	"github.com/blackwell-systems/brewcat/internal/logging"
)

func logger() *log.Logger {
	return logging.Get("brew")
}
