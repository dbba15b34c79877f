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
	"strconv"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/etl"
	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// StatusHeader carries the final run state on run responses.
const StatusHeader = "X-ETL-Status"

type stageResponse struct {
	Stage  etl.State   `json:"stage"`
	Entity string      `json:"entity"`
	Kind   schema.Kind `json:"kind"`
	Rows   int         `json:"rows"`
	Error  string      `json:"error,omitempty"`
}

type runResponse struct {
	RunID       string          `json:"run_id"`
	State       etl.State       `json:"state"`
	FailedStage string          `json:"failed_stage,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	RowsLoaded  int64           `json:"rows_loaded"`
	Log         []string        `json:"log"`
	Stages      []stageResponse `json:"stages"`
}

func newRunResponse(res *etl.Result) runResponse {
	resp := runResponse{
		RunID:       res.RunID.String(),
		State:       res.State,
		FailedStage: res.FailedStage,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		RowsLoaded:  res.RowsLoaded(),
		Log:         res.Log,
		Stages:      make([]stageResponse, 0, len(res.Stages)),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	for _, s := range res.Stages {
		sr := stageResponse{Stage: s.Stage, Entity: s.Entity, Kind: s.Kind, Rows: s.Rows}
		if s.Err != nil {
			sr.Error = s.Err.Error()
		}
		resp.Stages = append(resp.Stages, sr)
	}
	return resp
}

type contentsResponse struct {
	// TableCounts holds -1 for entities that could not be counted.
	TableCounts map[string]int64 `json:"table_counts"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json"
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	// Runs outlive the request that started them.
	res, err := s.trigger.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrBusy) {
			status = http.StatusConflict
		}
		if wantsJSON(r) {
			writeJSON(w, status, map[string]string{"error": err.Error()})
		} else {
			writeText(w, status, "Error: "+err.Error()+"\n")
		}
		return
	}

	w.Header().Set(StatusHeader, string(res.State))
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newRunResponse(res))
		return
	}
	writeText(w, http.StatusOK, strings.Join(res.Log, "\n")+"\n")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trigger.Status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, s.historyLimit)
	}

	olap, err := s.open.OpenOLAP(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer olap.Close()

	runs, err := olap.RecentRuns(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) contents(open func(context.Context) (store.Store, error), entities []*schema.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := open(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		defer st.Close()

		resp := contentsResponse{TableCounts: make(map[string]int64, len(entities))}
		for _, e := range entities {
			n, err := st.Count(r.Context(), e)
			if err != nil {
				logging.Debug().Err(err).Str("entity", e.Name).Msg("Count failed")
				n = -1
			}
			resp.TableCounts[e.Name] = n
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
