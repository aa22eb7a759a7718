package dea

import (
	"io"

	"github.com/sirupsen/logrus"
)

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
