// ABOUTME: Process-wide logrus setup with optional rotated log file.
// ABOUTME: Logs go to stderr so stdout stays free for command output and MCP stdio.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams controls where logs go and how verbose they are.
type SetupParams struct {
	Level      logrus.Level
	FileName   string
	JSONFormat bool
	// Quiet drops stderr output when a log file is set.
	Quiet bool
}

// Setup configures the standard logrus logger. The returned closer flushes
// and closes the log file, if any.
func Setup(params SetupParams) io.Closer {
	if params.JSONFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(params.Level)

	if params.FileName == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}
	}

	rotating := &lumberjack.Logger{
		Filename:   params.FileName,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		LocalTime:  false,
		Compress:   true,
	}
	if params.Quiet {
		logrus.SetOutput(rotating)
	} else {
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotating))
	}
	return rotating
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
