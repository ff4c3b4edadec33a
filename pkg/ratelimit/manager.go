// Package ratelimit limits how often each API client may call the console.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sitemap-console/pkg/config"
	"sitemap-console/pkg/logging"
)

// Manager enforces simple per-client rate limiting using token buckets.
type Manager struct {
	cfg    *config.RateLimitConfig
	logger *logging.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh chan struct{}
	now    func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewManager creates a rate limit manager when rate limiting is enabled.
func NewManager(cfg *config.RateLimitConfig, logger *logging.Logger) *Manager {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]*clientLimiter, 128),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	if cfg.CleanupInterval > 0 {
		go m.cleanupLoop()
	}

	return m
}

// Allow reports whether the client may proceed. limited is true when the
// request was refused by the client's bucket.
func (m *Manager) Allow(clientIP string) (allowed bool, limited bool) {
	if m == nil || clientIP == "" {
		return true, false
	}

	entry := m.getLimiter(clientIP)
	ok := entry.limiter.AllowN(m.now(), 1)
	m.touch(entry)
	return ok, !ok
}

// LogViolations reports whether violations should be logged.
func (m *Manager) LogViolations() bool {
	if m == nil || m.cfg == nil {
		return false
	}
	return m.cfg.LogViolations
}

// Tracked returns the number of clients with a live bucket.
func (m *Manager) Tracked() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Stop terminates background cleanup goroutines.
func (m *Manager) Stop() {
	if m == nil {
		return
	}
	select {
	case <-m.stopCh:
		return
	default:
		close(m.stopCh)
	}
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) cleanup() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for ip, entry := range m.clients {
		if now.Sub(entry.lastSeen) > m.cfg.CleanupInterval {
			delete(m.clients, ip)
			removed++
		}
	}
	if removed > 0 && m.logger != nil {
		m.logger.Debug("Expired idle rate limit buckets", "removed", removed)
	}
}

func (m *Manager) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.clients[clientIP]; ok {
		return entry
	}

	if m.cfg.MaxTrackedClients > 0 && len(m.clients) >= m.cfg.MaxTrackedClients {
		m.evictOldestLocked()
	}

	entry := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(m.cfg.RequestsPerSecond), m.cfg.Burst),
		lastSeen: m.now(),
	}
	m.clients[clientIP] = entry
	return entry
}

func (m *Manager) touch(entry *clientLimiter) {
	m.mu.Lock()
	entry.lastSeen = m.now()
	m.mu.Unlock()
}

func (m *Manager) evictOldestLocked() {
	var oldestIP string
	var oldestTime time.Time
	first := true

	for ip, entry := range m.clients {
		if first || entry.lastSeen.Before(oldestTime) {
			oldestIP = ip
			oldestTime = entry.lastSeen
			first = false
		}
	}

	if oldestIP != "" {
		delete(m.clients, oldestIP)
	}
}
