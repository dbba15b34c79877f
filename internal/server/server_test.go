//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pgEdge/pgedge-careetl/internal/etl"
	"github.com/pgEdge/pgedge-careetl/internal/metrics"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/seed"
	"github.com/pgEdge/pgedge-careetl/internal/store"
	"github.com/pgEdge/pgedge-careetl/internal/store/memstore"
	"github.com/pgEdge/pgedge-careetl/pkg/version"
)

// shared hands out the same store on every open and ignores Close.
type shared struct {
	store.Store
}

func (shared) Close() error { return nil }

type env struct {
	oltp, olap *memstore.Store
	trigger    *Trigger
	server     *Server
	metrics    *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{oltp: memstore.New(), olap: memstore.New(), metrics: metrics.New()}
	_, err := seed.NewGenerator(e.oltp, seed.Config{Seed: 8}).Generate(context.Background())
	require.NoError(t, err)

	open := OpenerFuncs{
		OLTP: func(context.Context) (store.Store, error) { return shared{e.oltp}, nil },
		OLAP: func(context.Context) (store.Store, error) { return shared{e.olap}, nil },
	}
	e.trigger = NewTrigger(open, etl.WithMetrics(e.metrics))
	e.server = New(e.trigger, open, e.metrics, Config{Listen: "127.0.0.1:0", HistoryLimit: 5})
	return e
}

func (e *env) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRunText(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/etl/run")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Completed", rec.Header().Get(StatusHeader))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "Clearing table FactAttendance...\n"), body)
	assert.Contains(t, body, "All OLAP tables cleared.\n")
	assert.Contains(t, body, "ETL process completed successfully.\n")
}

func TestRunJSON(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/etl/run?format=json")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, etl.Completed, resp.State)
	assert.Empty(t, resp.Error)
	assert.Len(t, resp.Stages, 26)
	assert.NotEmpty(t, resp.RunID)
	assert.Positive(t, resp.RowsLoaded)
	assert.Equal(t, "ETL process completed successfully.", resp.Log[len(resp.Log)-1])
}

func TestRunFailedStillAnswersOK(t *testing.T) {
	e := newEnv(t)
	e.olap.FailInsert("FactInvoice", nil, errors.New("boom"))

	rec := e.do(http.MethodGet, "/api/etl/run?format=json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Failed", rec.Header().Get(StatusHeader))
	var resp runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, etl.Failed, resp.State)
	assert.Equal(t, "FactInvoice", resp.FailedStage)
	assert.Contains(t, resp.Error, "boom")
}

func TestRunBusy(t *testing.T) {
	e := newEnv(t)
	e.trigger.run.Lock()
	defer e.trigger.run.Unlock()

	rec := e.do(http.MethodGet, "/api/etl/run")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrBusy.Error())
	assert.Empty(t, rec.Header().Get(StatusHeader))
}

func TestRunOpenFailure(t *testing.T) {
	open := OpenerFuncs{
		OLTP: func(context.Context) (store.Store, error) { return nil, errors.New("connection refused") },
		OLAP: func(context.Context) (store.Store, error) { return memstore.New(), nil },
	}
	s := New(NewTrigger(open), open, nil, Config{HistoryLimit: 5})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/etl/run", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error: failed to open OLTP store: connection refused\n", rec.Body.String())
}

func TestStatus(t *testing.T) {
	e := newEnv(t)

	var before Status
	rec := e.do(http.MethodGet, "/api/etl/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, etl.Idle, before.State)
	assert.Nil(t, before.LastRun)

	e.do(http.MethodGet, "/api/etl/run")

	var after Status
	rec = e.do(http.MethodGet, "/api/etl/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, etl.Completed, after.State)
	assert.False(t, after.Running)
	require.NotNil(t, after.LastRun)
	assert.Equal(t, "Completed", after.LastRun.State)
}

func TestHistory(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/etl/run").Code)
	}

	var runs []store.RunRecord
	rec := e.do(http.MethodGet, "/api/etl/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 3)

	rec = e.do(http.MethodGet, "/api/etl/history?limit=2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)

	rec = e.do(http.MethodGet, "/api/etl/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEmpty(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/etl/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// flakyCount fails to count one entity.
type flakyCount struct {
	shared
	entity string
}

func (f flakyCount) Count(ctx context.Context, e *schema.Entity) (int64, error) {
	if e.Name == f.entity {
		return 0, errors.New("table missing")
	}
	return f.shared.Count(ctx, e)
}

func TestContents(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/api/etl/run")

	var oltp contentsResponse
	rec := e.do(http.MethodGet, "/api/debug/oltp-contents")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &oltp))
	assert.Len(t, oltp.TableCounts, 9)
	assert.Equal(t, int64(20), oltp.TableCounts["Employee"])

	var olap contentsResponse
	rec = e.do(http.MethodGet, "/api/debug/olap-contents")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &olap))
	assert.Len(t, olap.TableCounts, 13)
	assert.Equal(t, int64(20), olap.TableCounts["DimEmployee"])
	assert.Equal(t, oltp.TableCounts["Asset"], olap.TableCounts["FactDamageReport"])

	open := OpenerFuncs{
		OLTP: func(context.Context) (store.Store, error) { return flakyCount{shared{e.oltp}, "Shift"}, nil },
		OLAP: func(context.Context) (store.Store, error) { return shared{e.olap}, nil },
	}
	s := New(e.trigger, open, nil, Config{HistoryLimit: 1})
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/debug/oltp-contents", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &oltp))
	assert.Equal(t, int64(-1), oltp.TableCounts["Shift"])
	assert.Equal(t, int64(20), oltp.TableCounts["Employee"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/api/etl/run")

	rec := e.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `careetl_runs_total{failed_stage="",state="Completed"} 1`)
	assert.Contains(t, rec.Body.String(), `careetl_rows_loaded_total{entity="DimEmployee"} 20`)
}

func TestIndex(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), version.Name+" "))
	assert.Contains(t, rec.Body.String(), "/api/etl/run")
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodDelete, "/api/etl/run"},
		{http.MethodPut, "/api/etl/run"},
		{http.MethodPost, "/api/etl/status"},
		{http.MethodPost, "/api/etl/history"},
		{http.MethodDelete, "/api/debug/olap-contents"},
		{http.MethodPost, "/api/debug/oltp-contents"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			assert.Equal(t, http.StatusMethodNotAllowed, e.do(tt.method, tt.target).Code)
		})
	}
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/etl/unknown").Code)
}

func TestTriggerSeededDamageRepeatsAcrossRuns(t *testing.T) {
	e := newEnv(t)
	open := OpenerFuncs{
		OLTP: func(context.Context) (store.Store, error) { return shared{e.oltp}, nil },
		OLAP: func(context.Context) (store.Store, error) { return shared{e.olap}, nil },
	}
	trigger := NewTrigger(open, etl.WithDamageConfig(etl.DefaultDamageConfig(), 7))

	// report_date follows the wall clock, so only costs are compared.
	costs := func() map[any]any {
		res, err := trigger.Run(context.Background())
		require.NoError(t, err)
		require.True(t, res.Succeeded())
		out := map[any]any{}
		for _, row := range e.olap.Rows(schema.FactDamageReport) {
			out[row["dim_asset_id"]] = row["repair_cost"]
		}
		return out
	}

	first := costs()
	require.NotEmpty(t, first)
	assert.Equal(t, first, costs())
}

// gate blocks the first employee read until released.
type gate struct {
	shared
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gate) Employees(ctx context.Context) ([]store.Employee, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.shared.Employees(ctx)
}

func TestTriggerAllowsOneRunAtATime(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newEnv(t)
	g := &gate{shared: shared{e.oltp}, entered: make(chan struct{}), release: make(chan struct{})}
	open := OpenerFuncs{
		OLTP: func(context.Context) (store.Store, error) { return g, nil },
		OLAP: func(context.Context) (store.Store, error) { return shared{e.olap}, nil },
	}
	trigger := NewTrigger(open)

	done := make(chan *etl.Result)
	go func() {
		res, err := trigger.Run(context.Background())
		assert.NoError(t, err)
		done <- res
	}()
	<-g.entered

	st := trigger.Status()
	assert.True(t, st.Running)
	assert.Equal(t, etl.LoadingDimensions, st.State)

	_, err := trigger.Run(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(g.release)
	res := <-done
	assert.True(t, res.Succeeded())

	res, err = trigger.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
}

func TestServeScheduledRuns(t *testing.T) {
	e := newEnv(t)
	s := New(e.trigger, e.server.open, nil, Config{
		Listen:       "127.0.0.1:0",
		Schedule:     50 * time.Millisecond,
		HistoryLimit: 5,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx) }()

	assert.Eventually(t, func() bool {
		return e.trigger.Status().LastRun != nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	runs, err := e.olap.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)
}

func TestServeListenFailure(t *testing.T) {
	e := newEnv(t)
	s := New(e.trigger, e.server.open, nil, Config{Listen: "127.0.0.1:-1", HistoryLimit: 5})

	err := s.Serve(context.Background())
	assert.ErrorContains(t, err, "http server failed")
}
