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

	jww "github.com/spf13/jwalterweatherman"
)

// spf13Writer adapts a *Logger into an io.Writer so jwalterweatherman's
// output (cobra's own diagnostic chatter) lands in the same sink as every
// other log line, instead of going straight to stderr unformatted.
type spf13Writer struct {
	l   *Logger
	lvl Level
}

func (w spf13Writer) Write(p []byte) (int, error) {
	msg := string(p)
	switch w.lvl {
	case DebugLevel:
		w.l.Debug(msg)
	case WarnLevel:
		w.l.Warn(msg)
	case ErrorLevel, FatalLevel, PanicLevel:
		w.l.Error(msg)
	default:
		w.l.Info(msg)
	}
	return len(p), nil
}

// SetSPF13Level routes jwalterweatherman's log notepad (not its stdout
// "feedback" notepad) through l at the threshold implied by lvl, the way the teacher's
// logger.SetSPF13Level wires cobra's own notepad to its logrus sink.
func (l *Logger) SetSPF13Level(lvl Level) {
	if lvl == NilLevel() {
		jww.SetLogOutput(io.Discard)
		jww.SetLogThreshold(jww.LevelCritical)
		return
	}

	jww.SetLogOutput(spf13Writer{l: l, lvl: lvl})

	switch {
	case lvl >= DebugLevel:
		jww.SetLogThreshold(jww.LevelTrace)
	case lvl >= InfoLevel:
		jww.SetLogThreshold(jww.LevelInfo)
	case lvl >= WarnLevel:
		jww.SetLogThreshold(jww.LevelWarn)
	case lvl >= ErrorLevel:
		jww.SetLogThreshold(jww.LevelError)
	default:
		jww.SetLogThreshold(jww.LevelFatal)
	}
}

// NilLevel mirrors the teacher's sentinel "never log" level; it is a
// function (not a const) whose value, 255, sits far past DebugLevel so it
// stays out of Level's normal iota run and matches no case of Logrus()'s
// switch.
func NilLevel() Level { return Level(255) }
