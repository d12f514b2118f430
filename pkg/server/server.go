/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server pkg/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"

	"github.com/carverauto/fusiond/pkg/metrics"
)

const (
	defaultWorkers        = 8
	defaultQueueSize      = 128
	defaultMaxConnections = 256
	defaultIOTimeout      = 10 * time.Second
)

// Config holds the connection server settings.
type Config struct {
	ListenAddr     string
	Workers        int           // worker pool size
	QueueSize      int           // accepted-connection queue depth
	MaxConnections int           // cap on concurrently open connections
	AcceptRate     float64       // accepts per second, 0 = unlimited
	ReadTimeout    time.Duration // per-connection read deadline
	WriteTimeout   time.Duration // per-connection write deadline
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}

	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}

	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConnections
	}

	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultIOTimeout
	}

	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultIOTimeout
	}

	return c
}

// Server accepts connections, parses one request per connection, dispatches
// it through the router, and writes the serialized response in one send.
// Accepted connections go through a bounded queue drained by a fixed worker
// pool, so admission is backpressured rather than unbounded. Stop closes the
// listener and then waits, up to its context deadline, for in-flight
// requests to drain.
type Server struct {
	config   Config
	router   *Router
	recorder metrics.Recorder
	limiter  *rate.Limiter

	mu       sync.Mutex
	listener net.Listener
	started  bool

	conns      chan net.Conn
	done       chan struct{}
	acceptDone chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup

	active int64
}

func New(cfg Config, router *Router, recorder metrics.Recorder) *Server {
	cfg = cfg.withDefaults()

	s := &Server{
		config:     cfg,
		router:     router,
		recorder:   recorder,
		conns:      make(chan net.Conn, cfg.QueueSize),
		done:       make(chan struct{}),
		acceptDone: make(chan struct{}),
	}

	if cfg.AcceptRate > 0 {
		burst := int(cfg.AcceptRate)
		if burst < 1 {
			burst = 1
		}

		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}

	return s
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Start listens and runs the accept loop until Stop or context cancellation.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}

	ln = netutil.LimitListener(ln, s.config.MaxConnections)

	s.mu.Lock()
	s.listener = ln
	s.started = true
	s.mu.Unlock()

	log.Printf("HTTP server listening on %s (%d workers, queue %d, max %d connections)",
		ln.Addr(), s.config.Workers, s.config.QueueSize, s.config.MaxConnections)
	log.Printf("Endpoints: GET /health, POST /fuse, GET /metrics, GET /stats, GET /config, POST /config")

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)

		go s.worker()
	}

	defer close(s.acceptDone)
	defer close(s.conns)

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			case <-ctx.Done():
				return nil
			default:
			}

			return fmt.Errorf("accept failed: %w", err)
		}

		select {
		case s.conns <- conn:
		case <-s.done:
			_ = conn.Close()
			return nil
		case <-ctx.Done():
			_ = conn.Close()
			return nil
		}
	}
}

// Stop halts admission and waits for queued and in-flight requests to finish,
// bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	ln := s.listener
	s.mu.Unlock()

	if !started {
		return nil
	}

	s.closeOnce.Do(func() {
		close(s.done)

		if err := ln.Close(); err != nil {
			log.Printf("Error closing listener: %v", err)
		}
	})

	select {
	case <-s.acceptDone:
	case <-ctx.Done():
		return fmt.Errorf("shutdown interrupted before accept loop stopped: %w", ctx.Err())
	}

	drained := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		log.Printf("All in-flight requests drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out with requests in flight: %w", ctx.Err())
	}
}

func (s *Server) worker() {
	defer s.wg.Done()

	for conn := range s.conns {
		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing connection: %v", err)
		}
	}()

	s.recorder.SetGauge("active_connections", float64(atomic.AddInt64(&s.active, 1)), "")

	defer func() {
		s.recorder.SetGauge("active_connections", float64(atomic.AddInt64(&s.active, -1)), "")
	}()

	requestID := uuid.New().String()

	if err := conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
		log.Printf("[%s] failed to set read deadline: %v", requestID, err)
		return
	}

	// One read into a fixed buffer; requests beyond it are unsupported.
	buf := make([]byte, maxRequestSize)

	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		log.Printf("[%s] read from %s failed: %v", requestID, conn.RemoteAddr(), err)
		return
	}

	resp := newResponse()

	req, err := parseRequest(buf[:n])
	if err != nil {
		resp.StatusCode = http.StatusBadRequest
		_ = resp.JSON(apiResponse{Status: "error", Message: err.Error()})
	} else {
		req.ID = requestID
		req.RemoteAddr = conn.RemoteAddr().String()

		s.dispatch(req, resp)
	}

	resp.SetHeader("X-Request-Id", requestID)

	if err := conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		log.Printf("[%s] failed to set write deadline: %v", requestID, err)
		return
	}

	if _, err := conn.Write(resp.serialize()); err != nil {
		log.Printf("[%s] write to %s failed: %v", requestID, conn.RemoteAddr(), err)
	}
}

func (s *Server) dispatch(req *Request, resp *Response) {
	handler, err := s.router.Lookup(req.Method, req.Path)

	switch {
	case errors.Is(err, errNotFound):
		resp.StatusCode = http.StatusNotFound
		_ = resp.JSON(apiResponse{Status: "error", Message: "not found"})

		return
	case errors.Is(err, errMethodNotAllowed):
		resp.StatusCode = http.StatusMethodNotAllowed
		_ = resp.JSON(apiResponse{Status: "error", Message: "method not allowed"})

		return
	}

	if err := s.invoke(handler, req, resp); err != nil {
		log.Printf("[%s] %s %s failed: %v", req.ID, req.Method, req.Path, err)

		*resp = *newResponse()
		resp.StatusCode = http.StatusInternalServerError
		_ = resp.JSON(apiResponse{Status: "error", Message: err.Error()})
	}
}

// invoke shields the worker from a panicking handler; the panic comes back
// as an error and turns into a 500.
func (s *Server) invoke(h HandlerFunc, req *Request, resp *Response) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return h(req, resp)
}
