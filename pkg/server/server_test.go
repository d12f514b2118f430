/*
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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fusiond/pkg/fusion"
	"github.com/carverauto/fusiond/pkg/metrics"
)

// startTestServer brings up a full server on a loopback port and returns its
// base URL.
func startTestServer(t *testing.T) string {
	t.Helper()

	registry := metrics.NewRegistry()
	engine := fusion.NewEngine()

	router := NewRouter()
	NewHandlers(engine, registry, registry).Register(router)

	srv := New(Config{
		ListenAddr: "127.0.0.1:0",
		Workers:    4,
		QueueSize:  16,
	}, router, registry)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := srv.Start(ctx); err != nil {
			t.Errorf("server start failed: %v", err)
		}
	}()

	require.Eventually(t, func() bool {
		return srv.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		_ = srv.Stop(stopCtx)
		cancel()
	})

	return "http://" + srv.Addr()
}

func getJSON(t *testing.T, url string) (int, envelope) {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec // test URL
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope

	require.NoError(t, json.Unmarshal(body, &env))

	return resp.StatusCode, env
}

func TestServerEndToEnd(t *testing.T) {
	baseURL := startTestServer(t)

	t.Run("health", func(t *testing.T) {
		status, env := getJSON(t, baseURL+"/health")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "success", env.Status)

		var data map[string]string

		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "0.1.0", data["version"])
	})

	t.Run("fuse rejects the outlier", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/fuse", "application/json",
			strings.NewReader(`{"readings":[12.1,11.9,12.0,12.2,50.0]}`))
		require.NoError(t, err)

		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

		var env envelope

		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		require.Equal(t, "success", env.Status)

		var data fuseResult

		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 5, data.InputCount)
		assert.InDelta(t, 12.1, data.FusedValue, 0.5)
	})

	t.Run("fuse with empty array is a 400", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/fuse", "application/json",
			strings.NewReader(`{"readings":[]}`))
		require.NoError(t, err)

		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("metrics exposition includes the request counters", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/metrics")
		require.NoError(t, err)

		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `requests_total{endpoint="/fuse"}`)
		assert.Contains(t, string(body), "request_duration_ms_bucket")
	})

	t.Run("stats", func(t *testing.T) {
		status, env := getJSON(t, baseURL+"/stats")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "success", env.Status)

		var data statsPayload

		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Positive(t, data.TotalRequests)
		assert.NotEmpty(t, data.Metrics)
	})

	t.Run("config round trip", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/config", "application/json",
			strings.NewReader(`{"outlier_threshold":2.5,"min_confidence":0.7,"enable_outlier_detection":true}`))
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		getResp, err := http.Get(baseURL + "/config")
		require.NoError(t, err)

		defer func() { _ = getResp.Body.Close() }()

		body, err := io.ReadAll(getResp.Body)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"outlier_threshold":2.5,"min_confidence":0.7,"enable_outlier_detection":true}`,
			string(body))
	})

	t.Run("invalid config is a 400", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/config", "application/json",
			strings.NewReader(`{"outlier_threshold":-1}`))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown path is a 404", func(t *testing.T) {
		status, env := getJSON(t, baseURL+"/nope")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "error", env.Status)
	})

	t.Run("wrong method on a known path is a 405", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, baseURL+"/health", http.NoBody)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("garbage request line is a 400", func(t *testing.T) {
		conn, err := net.Dial("tcp", strings.TrimPrefix(baseURL, "http://"))
		require.NoError(t, err)

		defer func() { _ = conn.Close() }()

		_, err = conn.Write([]byte("GARBAGE\r\n\r\n"))
		require.NoError(t, err)

		reply, err := io.ReadAll(conn)
		require.NoError(t, err)
		assert.Contains(t, string(reply), "HTTP/1.1 400")
	})

	t.Run("concurrent fuse requests all succeed", func(t *testing.T) {
		const clients = 8

		var wg sync.WaitGroup

		errs := make(chan error, clients)

		for i := 0; i < clients; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				resp, err := http.Post(baseURL+"/fuse", "application/json",
					strings.NewReader(`{"readings":[10,11,12,13,14]}`))
				if err != nil {
					errs <- err
					return
				}

				_ = resp.Body.Close()

				if resp.StatusCode != http.StatusOK {
					errs <- fmt.Errorf("unexpected status %d", resp.StatusCode)
				}
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
	})
}

func TestServerDrainsInFlightRequests(t *testing.T) {
	registry := metrics.NewRegistry()
	router := NewRouter()

	release := make(chan struct{})
	router.Handle(http.MethodGet, "/slow", func(_ *Request, resp *Response) error {
		<-release
		resp.Text("done")

		return nil
	})

	srv := New(Config{ListenAddr: "127.0.0.1:0", Workers: 2, QueueSize: 4}, router, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = srv.Start(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	bodyCh := make(chan string, 1)

	go func() {
		resp, err := http.Get("http://" + srv.Addr() + "/slow")
		if err != nil {
			bodyCh <- "error: " + err.Error()
			return
		}

		defer func() { _ = resp.Body.Close() }()

		body, _ := io.ReadAll(resp.Body)
		bodyCh <- string(body)
	}()

	// Let the request reach the handler, then shut down while it is blocked.
	time.Sleep(100 * time.Millisecond)

	stopDone := make(chan error, 1)

	go func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		stopDone <- srv.Stop(stopCtx)
	}()

	// Stop must not return while the handler is still running.
	select {
	case err := <-stopDone:
		t.Fatalf("Stop returned before in-flight request finished: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)

	require.NoError(t, <-stopDone)
	assert.Equal(t, "done", <-bodyCh)
}

func TestStopWithoutStart(t *testing.T) {
	srv := New(Config{}, NewRouter(), metrics.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, srv.Stop(ctx))
}
