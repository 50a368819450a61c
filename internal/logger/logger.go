package logger

import (
	"io"
	"os"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls where and how much is logged.
type Options struct {
	File   string
	Level  string
	Stdout bool
}

var output io.Writer = os.Stderr

// Setup initializes Logrus logging via a rotating file.
func Setup(opts Options) {
	// 1) Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 7,  // keep up to 7 old files
		MaxAge:     7,  // days
		Compress:   true,
	}

	output = rotator
	if opts.Stdout {
		output = io.MultiWriter(rotator, os.Stdout)
	}

	// 2) Configure Logrus to write to that file
	logrus.SetOutput(output)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
}

// Writer returns the destination configured by Setup.
func Writer() io.Writer {
	return output
}

// AccessLog returns the gin request logger writing next to the application log.
func AccessLog() gin.HandlerFunc {
	return ginlog.SetLogger(
		ginlog.WithWriter(output),
		ginlog.WithUTC(true),
	)
}

// GormLogger routes GORM's slow-query and error logs through Logrus.
func GormLogger() gormlogger.Interface {
	return gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
