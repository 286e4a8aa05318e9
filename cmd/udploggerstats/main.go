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

// udploggerstats aggregates received lines into rolling per-hour counters
// of status, user sex and user type, persisted to SQLite. Recovered from
// original_source/trunk/udplogger/udploggerstats.cc, which kept the
// equivalent counters in-memory and only dumped them (under __DEBUG__) at
// exit; this rewrite persists them so a restart does not lose history.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbroemeling/udplogger/cliutil"
	"github.com/rbroemeling/udplogger/logger"
	"github.com/rbroemeling/udplogger/parser"
	"github.com/rbroemeling/udplogger/receiver"
	"github.com/rbroemeling/udplogger/stats"
	"github.com/rbroemeling/udplogger/wire"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultDBPath mirrors the teacher's getDefaultPath (cobra/configure.go):
// a dotfile named for the program, under the user's home directory.
func defaultDBPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".udploggerstats.db"
	}
	return home + string(os.PathSeparator) + ".udploggerstats.db"
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "udploggerstats",
		Short:   "Aggregate received udplogger lines into rolling per-hour counters",
		Version: version,
		RunE:    run,
	}

	flags := cmd.Flags()
	flags.StringSliceP("host", "o", nil, "publisher host[:port] to beacon (repeatable); default: discovered broadcast addresses")
	flags.IntP("interval", "i", 30, "beacon interval in seconds")
	flags.String("db", defaultDBPath(), "path to the SQLite counters database")

	v := viper.New()
	v.SetEnvPrefix("UDPLOGGER")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	cmd.SetContext(context.WithValue(context.Background(), viperKey{}, v))

	return cmd
}

type viperKey struct{}

func run(cmd *cobra.Command, _ []string) error {
	v := cmd.Context().Value(viperKey{}).(*viper.Viper)
	log := cliutil.NewLogger("udploggerstats", logger.InfoLevel)
	cliutil.PrintBanner("udploggerstats", version)

	db, err := stats.Open(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("udploggerstats: opening %s: %w", v.GetString("db"), err)
	}
	defer db.Close()

	endpoints, err := receiver.ResolveEndpoints(v.GetStringSlice("host"), receiver.DefaultPort)
	if err != nil {
		return err
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

	return client.Run(ctx, receiver.Handlers{
		OnDatagram: func(_ *net.UDPAddr, data []byte) {
			if wire.IsBeacon(data) {
				return
			}
			entry := parser.Parse(data)
			if err := db.Record(entry, time.Now()); err != nil {
				log.WarnErr("recording stats failed", err)
			}
		},
		OnShutdown: func() {
			log.Info("shutting down")
		},
	})
}
