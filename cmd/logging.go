/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type MyFormatter struct{}

var levelList = []string{
	"PANIC",
	"FATAL",
	"ERROR",
	"WARN",
	"INFO",
	"DEBUG",
	"TRACE",
}

func (mf *MyFormatter) Format(entry *log.Entry) ([]byte, error) {
	level := levelList[int(entry.Level)]
	fileName := ""
	line := 0
	if entry.Caller != nil {
		fileName = filepath.Base(entry.Caller.File)
		line = entry.Caller.Line
	}
	// Example log line:
	// 2024-05-01 12:16:42 INFO analyzer.go:174 inspected 3 files, 4 tables, 12 indexes: 2 offenses, 0 errors
	msg := fmt.Sprintf("%s %s %s:%d %s\n",
		entry.Time.Format("2006-01-02 15:04:05"), level,
		fileName, line, entry.Message)
	return []byte(msg), nil
}

const (
	DEFAULT_CONSOLE_LOG_LEVEL = "warn"
	DEFAULT_FILE_LOG_LEVEL    = "info"
)

/*
InitLogging sends logs to ${logDir}/logs/yb-idxlint-<cmd>.log when logDir is set,
otherwise to stderr. An empty level picks warn for stderr and info for the log file.
*/
func InitLogging(logDir string, level string, cmdName string) error {
	if level == "" {
		level = DEFAULT_CONSOLE_LOG_LEVEL
		if logDir != "" {
			level = DEFAULT_FILE_LOG_LEVEL
		}
	}
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(logLevel)
	log.SetReportCaller(true)
	log.SetFormatter(&MyFormatter{})

	if logDir == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	logFileName := filepath.Join(logDir, "logs", fmt.Sprintf("yb-idxlint-%s.log", cmdName))
	// logRotator handles scenario where "logs" folder, or the log file does not exist.
	logRotator := &lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    200, // 200 MB log size before rotation
		MaxBackups: 10,  // Allow upto 10 logs at once before deleting oldest logs.
	}
	log.SetOutput(logRotator)

	log.Info("Logging initialised.")
	log.Infof("Args: %v", redactArgs(os.Args))
	log.Infof("\n%s", getVersionInfo())
	return nil
}

// redactArgs hides the password of database URIs passed on the command line.
func redactArgs(args []string) []string {
	redacted := make([]string, len(args))
	copy(redacted, args)
	for i := 0; i < len(redacted); i++ {
		opt := redacted[i]
		switch {
		case opt == "--source-db-uri" && i+1 < len(redacted):
			redacted[i+1] = redactURI(redacted[i+1])
		case strings.HasPrefix(opt, "--source-db-uri="):
			redacted[i] = "--source-db-uri=" + redactURI(strings.TrimPrefix(opt, "--source-db-uri="))
		}
	}
	return redacted
}

func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		// DSNs like user:pass@tcp(host)/db are not URLs
		if at := strings.LastIndex(uri, "@"); at >= 0 {
			if colon := strings.Index(uri[:at], ":"); colon >= 0 {
				return uri[:colon+1] + "XXX" + uri[at:]
			}
		}
		return uri
	}
	return u.Redacted()
}
