package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process wide structured logger.
var Logger = logrus.New()

var once sync.Once

// Options configures the global logger.
type Options struct {
	Level   string
	File    string
	Release bool
}

// Init configures Logger once. When File is set, output is duplicated to a
// rotated log file.
func Init(opts Options) {
	once.Do(func() {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)

		if opts.Release {
			Logger.SetFormatter(&logrus.JSONFormatter{})
		} else {
			Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}

		if opts.File != "" {
			logFile := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
			Logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}

		Logger.WithFields(logrus.Fields{
			"level": level.String(),
			"file":  opts.File,
		}).Info("logger initialized")
	})
}
