// Package http exposes the wey service as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "wey/internal/log"
	"wey/internal/services"
)

type Server struct {
	http.Server
	auth        *services.Auth
	finance     *services.Finance
	analytics   *services.Analytics
	chat        *services.Messaging
	rateLimiter *rateLimiter
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, auth *services.Auth, finance *services.Finance, analytics *services.Analytics, chat *services.Messaging) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:        auth,
		finance:     finance,
		analytics:   analytics,
		chat:        chat,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.trace(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.trace(s.handleLogin))

	mux.HandleFunc("GET /api/transactions/{userId}", s.trace(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions/{userId}", s.trace(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{userId}/{id}", s.trace(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/analytics/balance/{userId}", s.trace(s.handleBalance))
	mux.HandleFunc("GET /api/analytics/categories/{userId}", s.trace(s.handleCategories))
	mux.HandleFunc("GET /api/analytics/transactions/{userId}/range", s.trace(s.handleRange))
	mux.HandleFunc("GET /api/analytics/weekly/{userId}", s.trace(s.handleWeekly))
	mux.HandleFunc("GET /api/analytics/averages/{userId}", s.trace(s.handleAverages))

	mux.HandleFunc("GET /api/chat/contacts/{userId}", s.trace(s.handleListContacts))
	mux.HandleFunc("POST /api/chat/contacts/{userId}", s.trace(s.handleAddContact))
	mux.HandleFunc("DELETE /api/chat/contacts/{userId}/{id}", s.trace(s.handleDeleteContact))
	mux.HandleFunc("GET /api/chat/messages/{userId}/{handle}", s.trace(s.handleConversation))
	mux.HandleFunc("POST /api/chat/messages/{userId}/{handle}", s.trace(s.handleSendMessage))
	mux.HandleFunc("POST /api/chat/messages/{userId}/{handle}/read", s.trace(s.handleMarkRead))
	mux.HandleFunc("GET /api/chat/global", s.trace(s.handleListBroadcast))
	mux.HandleFunc("POST /api/chat/global", s.trace(s.handleSendBroadcast))

	return s
}

// Shutdown stops the server and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

// trace adds a request id, request logging and POST rate limiting.
func (s *Server) trace(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDFrom returns the id the trace middleware stored, if any.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple per-client-IP rate limiter for POST endpoints.
type rateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientInfo
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes. The
// client IP comes from request headers, so without eviction the map would
// grow with every value a caller invents.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Up to 60 requests per minute per client.
	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
