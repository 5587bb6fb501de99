package db

import "github.com/yungbote/disclosure-backend/internal/platform/logger"

func nopLogger() *logger.Logger { return logger.Nop() }
