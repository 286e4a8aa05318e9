/*
 * MIT License
 *
 * Copyright (c) 2010 Nexopia.com, Inc.
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

// udploggercat tees every received log line to an output file, recovered
// from original_source/trunk/udplogger/udploggercat.c. It reopens its
// output on SIGHUP and on externally-detected rotation (fsnotify).
package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbroemeling/udplogger/cliutil"
	"github.com/rbroemeling/udplogger/logger"
	"github.com/rbroemeling/udplogger/receiver"
	"github.com/rbroemeling/udplogger/wire"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "udploggercat",
		Short:   "Tee received udplogger lines to a file",
		Version: version,
		RunE:    run,
	}

	flags := cmd.Flags()
	flags.StringSliceP("host", "o", nil, "publisher host[:port] to beacon (repeatable); default: discovered broadcast addresses")
	flags.IntP("interval", "i", 30, "beacon interval in seconds")
	flags.StringP("output", "O", "", "output file path (required)")
	_ = cmd.MarkFlagRequired("output")

	v := viper.New()
	v.SetEnvPrefix("UDPLOGGER")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	cmd.SetContext(context.WithValue(context.Background(), viperKey{}, v))

	return cmd
}

type viperKey struct{}

// teeFile wraps the output file under a mutex so the fsnotify watcher
// goroutine and SIGHUP's reload hook can both safely reopen it out from
// under the datagram handler.
type teeFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *bufio.Writer
	log  *logger.Logger
}

func openTee(path string, log *logger.Logger) (*teeFile, error) {
	t := &teeFile{path: path, log: log}
	if err := t.reopen(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *teeFile) reopen() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.f != nil {
		_ = t.w.Flush()
		_ = t.f.Close()
	}

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	t.f = f
	t.w = bufio.NewWriter(f)
	return nil
}

func (t *teeFile) writeLine(line []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.w.Write(line); err != nil {
		t.log.WarnErr("write failed", err)
		return
	}
	if err := t.w.WriteByte('\n'); err != nil {
		t.log.WarnErr("write failed", err)
		return
	}
	_ = t.w.Flush()
}

func (t *teeFile) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f != nil {
		_ = t.w.Flush()
		_ = t.f.Close()
	}
}

func run(cmd *cobra.Command, _ []string) error {
	v := cmd.Context().Value(viperKey{}).(*viper.Viper)
	log := cliutil.NewLogger("udploggercat", logger.InfoLevel)
	cliutil.PrintBanner("udploggercat", version)

	endpoints, err := receiver.ResolveEndpoints(v.GetStringSlice("host"), receiver.DefaultPort)
	if err != nil {
		return err
	}

	tee, err := openTee(v.GetString("output"), log)
	if err != nil {
		return err
	}
	defer tee.close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(v.GetString("output")); err != nil {
		log.WarnErr("fsnotify watch failed, external rotation will not be detected", err)
	}

	client, err := receiver.New(receiver.Config{
		BeaconInterval: time.Duration(v.GetInt("interval")) * time.Second,
		Endpoints:      endpoints,
	}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchRotation(ctx, watcher, tee, log)

	return client.Run(ctx, receiver.Handlers{
		OnDatagram: func(_ *net.UDPAddr, data []byte) {
			if wire.IsBeacon(data) {
				return
			}
			tee.writeLine(wire.ParseFrame(data).Line)
		},
		OnReload: func() {
			log.Info("reopening output file on SIGHUP")
			if err := tee.reopen(); err != nil {
				log.ErrorErr("reopen failed", err)
			}
		},
		OnShutdown: func() {
			log.Info("shutting down")
		},
	})
}

// watchRotation reopens tee when fsnotify observes the output path being
// renamed or removed out from under us (e.g. logrotate), supplementing the
// explicit HUP hook.
func watchRotation(ctx context.Context, watcher *fsnotify.Watcher, tee *teeFile, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				log.Info("output file rotated externally, reopening")
				if err := tee.reopen(); err != nil {
					log.ErrorErr("reopen after rotation failed", err)
				}
				_ = watcher.Add(tee.path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WarnErr("fsnotify error", err)
		}
	}
}
