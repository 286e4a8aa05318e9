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

// udploggerd is the publisher daemon (spec.md §4.4-4.5): it reads log lines
// from stdin, frames them and fans them out to every beaconing receiver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbroemeling/udplogger/admin"
	"github.com/rbroemeling/udplogger/cliutil"
	"github.com/rbroemeling/udplogger/logger"
	"github.com/rbroemeling/udplogger/metrics"
	"github.com/rbroemeling/udplogger/publisher"
	"github.com/rbroemeling/udplogger/wire"
)

// version is overridden at release-build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "udploggerd",
		Short:   "UDP log publisher: fan out stdin lines to self-registering receivers",
		Version: version,
		RunE:    runPublisher,
	}

	flags := cmd.Flags()
	flags.IntP("listen", "l", 43824, "UDP port to listen on for beacons and to bind the fan-out socket")
	flags.IntP("max_target_age", "m", 120, "seconds a target may go unbeaconed before it is pruned")
	flags.IntP("prune_target_interval", "p", 10, "seconds between prune passes (also the beacon-wait ceiling)")
	flags.StringP("tag", "t", "", fmt.Sprintf("tag embedded in every frame, max %d bytes", wire.TagMaxLength))
	flags.String("admin_listen", ":9824", "address for the /healthz, /metrics and /targets admin server")
	flags.String("log_level", "info", "log level: debug, info, warning, error")

	v := viper.New()
	v.SetEnvPrefix("UDPLOGGER")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	cmd.SetContext(context.WithValue(context.Background(), viperKey{}, v))

	return cmd
}

type viperKey struct{}

func runPublisher(cmd *cobra.Command, _ []string) error {
	v := cmd.Context().Value(viperKey{}).(*viper.Viper)

	tag := v.GetString("tag")
	if len(tag) > wire.TagMaxLength {
		return fmt.Errorf("udploggerd: --tag %q exceeds %d bytes", tag, wire.TagMaxLength)
	}

	lvl := logger.ParseLevel(v.GetString("log_level"))
	log := cliutil.NewLogger("udploggerd", lvl)

	cliutil.PrintBanner("udploggerd", version)

	m := metrics.NewPublisher()
	pub, err := publisher.New(publisher.Config{
		ListenPort:    v.GetInt("listen"),
		MaxTargetAge:  time.Duration(v.GetInt("max_target_age")) * time.Second,
		PruneInterval: time.Duration(v.GetInt("prune_target_interval")) * time.Second,
		Tag:           tag,
	}, log, m)
	if err != nil {
		return err
	}
	defer pub.Close()

	log.Info(fmt.Sprintf("listening on %s", pub.Addr()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	adminSrv := admin.New(v.GetString("admin_listen"), pub)
	adminDone := make(chan error, 1)
	go func() { adminDone <- adminSrv.Run(ctx) }()

	err = pub.Run(ctx, os.Stdin)
	stop()
	if adminErr := <-adminDone; adminErr != nil && err == nil {
		err = adminErr
	}
	return err
}
