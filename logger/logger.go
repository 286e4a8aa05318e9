/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
 * Copyright (c) 2026 rbroemeling/udplogger contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Logger is a structured, leveled logger built on logrus. The zero value is
// not usable; construct one with New.
type Logger struct {
	entry *logrus.Entry
}

// Options configures New.
type Options struct {
	Level  Level
	Output io.Writer // defaults to os.Stderr
	Color  *bool     // nil = auto-detect via terminal.IsTerminal
}

// New builds a Logger writing text-formatted entries, colorized only when
// Options.Color is true, or unset and Options.Output is a terminal
// (mirrors the teacher's defaultFormatter/defaultFormatterNoColor split).
func New(component string, opt Options) *Logger {
	out := opt.Output
	if out == nil {
		out = os.Stderr
	}

	color := false
	if opt.Color != nil {
		color = *opt.Color
	} else if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(opt.Level.Logrus())
	l.SetFormatter(&logrus.TextFormatter{
		ForceColors:      color,
		DisableColors:    !color,
		FullTimestamp:    true,
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})

	return &Logger{entry: l.WithField("component", component)}
}

// With returns a derived Logger carrying an additional structured field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// WarnErr logs msg at WarnLevel with an "error" field if err is non-nil; a
// nil err is a no-op, matching the teacher's CheckError helper used in
// cobra/configure.go.
func (l *Logger) WarnErr(msg string, err error) {
	if err == nil {
		return
	}
	l.entry.WithField("error", err).Warn(msg)
}

// ErrorErr is WarnErr's ErrorLevel counterpart, used when the publisher's
// beacon loop stops on a receive error and when udploggercat fails to
// reopen its output file.
func (l *Logger) ErrorErr(msg string, err error) {
	if err == nil {
		return
	}
	l.entry.WithField("error", err).Error(msg)
}

// SetLevel updates the effective log level at runtime, without restarting
// the process.
func (l *Logger) SetLevel(lvl Level) {
	l.entry.Logger.SetLevel(lvl.Logrus())
}
