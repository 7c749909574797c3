package utils

import (
	"io"

	"github.com/MrSnakeDoc/domon/internal/logger"
)

// Close closes c and ignores any error. For best-effort cleanup in defer.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure at warn.
func CloseLogged(c io.Closer, log logger.Logger, what string) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("what", what), logger.Error(err))
	}
}
