package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const maxBodyBytes = 1 << 20

// LeadHandler serves the public POST /leads used by the site forms and popups.
type LeadHandler struct {
	CreateUC    *usecase.CreateLeadUseCase
	rateLimiter *RateLimiter
}

// NewLeadHandler limits each client IP to perMinute submissions; 0 disables the limit.
func NewLeadHandler(uc *usecase.CreateLeadUseCase, perMinute int) *LeadHandler {
	h := &LeadHandler{CreateUC: uc}
	if perMinute > 0 {
		h.rateLimiter = NewRateLimiter(perMinute, time.Minute)
	}
	return h
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		w.Header().Set("Retry-After", "60")
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", nil)
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "invalid JSON body",
			[]usecase.ValidationError{{Field: "body", Message: "must be a JSON object"}})
		return
	}

	lead, err := h.CreateUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	middleware.RecordLeadIngested(string(lead.Source))
	writeJSON(w, http.StatusCreated, lead)
}

// getClientIP keys the rate limiter on RemoteAddr only. Proxy headers are
// honoured upstream by chi's RealIP when the router trusts them.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := rl.now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
