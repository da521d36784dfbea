// SPDX-License-Identifier: GPL-3.0-or-later
package log

import (
	"fmt"
	"io/ioutil"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggersMu sync.RWMutex
	loggers   map[string]*logrus.Logger
)

func NewPrefixLogger(prefix string) *PrefixLogger {
	stringPrefix := fmt.Sprintf("%s:\t", prefix)

	formatter := &logrus.TextFormatter{}
	formatter.FullTimestamp = true
	formatter.TimestampFormat = "15:04:05"
	formatter.DisableColors = strings.Contains(runtime.GOOS, "windows")
	return &PrefixLogger{
		formatter,
		[]byte(stringPrefix),
	}
}

type PrefixLogger struct {
	formatter logrus.Formatter
	prefix    []byte
}

func (f *PrefixLogger) Format(entry *logrus.Entry) ([]byte, error) {
	text, err := f.formatter.Format(entry)
	if err != nil {
		return nil, err
	}
	return append(f.prefix, text...), nil
}

const (
	LOG_MAIN        = "MA"
	LOG_IMPORT      = "IS"
	LOG_SOURCE      = "MS"
	LOG_CONVERTER   = "HC"
	LOG_MATCHER     = "CM"
	LOG_PERSISTENCE = "PI"
	LOG_IMAP        = "IM"
)

var prefixes = []string{
	LOG_MAIN,
	LOG_IMPORT,
	LOG_SOURCE,
	LOG_CONVERTER,
	LOG_MATCHER,
	LOG_PERSISTENCE,
	LOG_IMAP,
}

func getLevel(loglevel string) logrus.Level {
	switch strings.ToLower(loglevel) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "panic":
		return logrus.PanicLevel
	case "fatal":
		return logrus.FatalLevel
	}

	// Info is default
	return logrus.InfoLevel
}

func newLogger(prefix, loglevel string) *logrus.Logger {
	l := logrus.New()
	l.Level = getLevel(loglevel)
	l.Formatter = NewPrefixLogger(prefix)
	return l
}

func InitLogging(loglevel string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = make(map[string]*logrus.Logger)
	for _, prefix := range prefixes {
		loggers[prefix] = newLogger(prefix, loglevel)
	}
}

// InitDiscardLogging sets up all loggers to write nowhere, for tests.
func InitDiscardLogging() {
	InitLogging("error")
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	for _, l := range loggers {
		l.SetOutput(ioutil.Discard)
	}
}

func SetLogLevel(loglevel string) {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	for _, v := range loggers {
		v.Level = getLevel(loglevel)
	}
}

func Logger(logger string) *logrus.Logger {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	l, ok := loggers[logger]
	if !ok {
		panic("Logger " + logger + " unknown")
	}

	return l
}

// NullLogger returns a logger that discards everything.
func NullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}
