package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"wey/internal/core"
)

type registerRequest struct {
	Name       string          `json:"name"`
	Target     decimal.Decimal `json:"target"`
	Credential string          `json:"credential"`
}

type loginRequest struct {
	Credential string `json:"credential"`
}

// userSummary is the public shape of a user; the credential is returned only
// from registration so the client can store it.
type userSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	WeyID         string          `json:"weyId"`
	MonthlyTarget decimal.Decimal `json:"monthlyTarget"`
	CreatedAt     string          `json:"createdAt"`
	Credential    string          `json:"credential,omitempty"`
}

func summarize(u *core.User, includeCredential bool) userSummary {
	s := userSummary{
		ID:            u.ID,
		Name:          u.Name,
		WeyID:         u.WeyID,
		MonthlyTarget: u.MonthlyTarget,
		CreatedAt:     u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if includeCredential {
		s.Credential = u.Credential
	}
	return s
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	u, err := s.auth.Register(r.Context(), req.Name, req.Credential, req.Target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(u, true))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.auth.Authenticate(r.Context(), req.Credential)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(u, false))
}
