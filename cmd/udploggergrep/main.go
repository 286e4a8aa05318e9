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

// udploggergrep filters received lines by a regular expression against a
// chosen field, recovered from
// original_source/trunk/udplogger/udploggergrep.c. The original used PCRE;
// this rewrite uses the standard library's regexp (RE2) since no PCRE
// binding appears anywhere in the retrieval pack.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbroemeling/udplogger/cliutil"
	"github.com/rbroemeling/udplogger/logger"
	"github.com/rbroemeling/udplogger/parser"
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
		Use:     "udploggergrep <pattern>",
		Short:   "Print received udplogger lines whose field matches a regular expression",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE:    run,
	}

	flags := cmd.Flags()
	flags.StringSliceP("host", "o", nil, "publisher host[:port] to beacon (repeatable); default: discovered broadcast addresses")
	flags.IntP("interval", "i", 30, "beacon interval in seconds")
	flags.StringP("field", "f", "request_url", "entry field to match: request_url, user_agent, referer, remote_address")
	flags.BoolP("invert", "v", false, "print lines that do NOT match")

	v := viper.New()
	v.SetEnvPrefix("UDPLOGGER")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	cmd.SetContext(context.WithValue(context.Background(), viperKey{}, v))

	return cmd
}

type viperKey struct{}

func fieldOf(e parser.Entry, field string) string {
	switch field {
	case "user_agent":
		return e.UserAgent
	case "referer":
		return e.Referer
	case "remote_address":
		return e.RemoteAddress.String()
	case "query_string":
		return e.QueryString
	default:
		return e.RequestURL
	}
}

func run(cmd *cobra.Command, args []string) error {
	v := cmd.Context().Value(viperKey{}).(*viper.Viper)
	log := cliutil.NewLogger("udploggergrep", logger.InfoLevel)
	cliutil.PrintBanner("udploggergrep", version)

	pattern, err := regexp.Compile(args[0])
	if err != nil {
		return fmt.Errorf("udploggergrep: invalid pattern: %w", err)
	}

	field := v.GetString("field")
	invert := v.GetBool("invert")

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
			matched := pattern.MatchString(fieldOf(entry, field))
			if matched != invert {
				fmt.Println(string(wire.ParseFrame(data).Line))
			}
		},
		OnShutdown: func() {
			log.Info("shutting down")
		},
	})
}
