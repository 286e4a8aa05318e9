/*
 * MIT License
 *
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

// Package admin runs a small gin HTTP server alongside the publisher loop,
// exposing liveness, prometheus metrics and a target-table snapshot. It is
// pure introspection: it never mutates the publisher it is attached to.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rbroemeling/udplogger/publisher"
	"github.com/rbroemeling/udplogger/target"
)

// Server wraps an http.Server bound to a gin engine.
type Server struct {
	httpSrv *http.Server
}

// targetView is the JSON shape of one row returned by /targets.
type targetView struct {
	Addr       string    `json:"addr"`
	Port       int       `json:"port"`
	LastBeacon time.Time `json:"last_beacon"`
}

// New builds the admin server for p, listening on addr (e.g. ":9824").
// Routes:
//
//	GET /healthz  -> 200 "ok"
//	GET /metrics  -> prometheus text exposition for p.Metrics().Registry
//	GET /targets  -> JSON array of the live target table
func New(addr string, p *publisher.Publisher) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Metrics().Registry, promhttp.HandlerOpts{})))

	engine.GET("/targets", func(c *gin.Context) {
		views := make([]targetView, 0, p.Table().Len())
		p.Table().Range(func(t target.Target) {
			views = append(views, targetView{
				Addr:       t.Addr.String(),
				Port:       t.Port,
				LastBeacon: t.LastBeacon,
			})
		})
		c.JSON(http.StatusOK, views)
	})

	return &Server{httpSrv: &http.Server{Addr: addr, Handler: engine}}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}
