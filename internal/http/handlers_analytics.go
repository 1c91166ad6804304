package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"wey/internal/analytics"
)

const (
	defaultWeekCount = 4
	// Each requested week is a separate store scan, so the count is capped
	// to one year.
	maxWeekCount = 52
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analytics.Balance(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	dist, err := s.analytics.CategoryDistribution(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	startStr := strings.TrimSpace(r.URL.Query().Get("startDate"))
	endStr := strings.TrimSpace(r.URL.Query().Get("endDate"))
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	start, err := parseDate(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := parseDate(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	// A plain end date means the whole of that day, bounds being inclusive.
	if len(endStr) == len("2006-01-02") {
		end = end.Add(24*time.Hour - time.Second)
	}

	txs, err := s.finance.ListByRange(r.Context(), r.PathValue("userId"), start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	weeks := defaultWeekCount
	if v := strings.TrimSpace(r.URL.Query().Get("weeks")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxWeekCount {
			writeError(w, http.StatusBadRequest, "invalid weeks parameter")
			return
		}
		weeks = n
	}

	buckets, err := s.analytics.WeeklyStats(r.Context(), r.PathValue("userId"), weeks)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleAverages(w http.ResponseWriter, r *http.Request) {
	averages, err := s.analytics.AveragesByCategory(r.Context(), r.PathValue("userId"), analytics.DefaultAverageWindowDays)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, averages)
}
