// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Init sets the standard logger's output, level, and formatter. format is
// "text" or "json"; an empty level means info.
func Init(w io.Writer, level, format string) error {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		if lvl, err = logrus.ParseLevel(level); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}

	var f logrus.Formatter
	switch format {
	case "", "text":
		f = &logrus.TextFormatter{FullTimestamp: true, DisableLevelTruncation: true}
	case "json":
		f = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		}
	default:
		return fmt.Errorf("log format %q: use text or json", format)
	}

	logrus.SetOutput(w)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(f)
	return nil
}
