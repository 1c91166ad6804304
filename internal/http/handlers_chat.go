package http

import (
	"net/http"
	"strings"

	"wey/internal/core"
)

type addContactRequest struct {
	ContactWeyID string `json:"contactWeyId"`
	ContactName  string `json:"contactName"`
}

type sendMessageRequest struct {
	ToWeyID     string `json:"toWeyId"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
}

type sendBroadcastRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.chat.ListContacts(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var req addContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ContactWeyID) == "" {
		writeError(w, http.StatusBadRequest, "contactWeyId is required")
		return
	}

	contact, err := s.chat.AddContact(r.Context(), r.PathValue("userId"), req.ContactWeyID, req.ContactName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	// Scoped to id+owner, idempotent like transaction delete.
	if err := s.chat.DeleteContact(r.Context(), r.PathValue("id"), r.PathValue("userId")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.chat.Conversation(r.Context(), r.PathValue("userId"), r.PathValue("handle"), parseLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The path already names the recipient; a body toWeyId overrides it.
	toWey := req.ToWeyID
	if toWey == "" {
		toWey = r.PathValue("handle")
	}
	kind := core.MessageKind(req.MessageType)
	if req.MessageType == "" {
		kind = core.KindText
	}

	msg, err := s.chat.SendDirect(r.Context(), r.PathValue("userId"), toWey, req.Content, kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.MarkRead(r.Context(), r.PathValue("userId"), r.PathValue("handle")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (s *Server) handleListBroadcast(w http.ResponseWriter, r *http.Request) {
	broadcasts, err := s.chat.ListBroadcast(r.Context(), parseLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, broadcasts)
}

func (s *Server) handleSendBroadcast(w http.ResponseWriter, r *http.Request) {
	var req sendBroadcastRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	b, err := s.chat.SendBroadcast(r.Context(), req.UserID, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
