package console

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamHealth is the last known state of the Redis console stream.
type StreamHealth struct {
	Connected bool      `json:"connected"`
	LastOK    time.Time `json:"last_ok,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Latency   string    `json:"latency,omitempty"`
}

// HealthMonitor pings Redis on an interval and reports transitions between
// reachable and unreachable. Reconnection is left to the go-redis pool.
type HealthMonitor struct {
	rdb      *redis.Client
	interval time.Duration
	onChange func(StreamHealth)

	mu     sync.RWMutex
	health StreamHealth
}

// NewHealthMonitor creates a monitor that assumes Redis is reachable until
// the first failed ping. onChange may be nil.
func NewHealthMonitor(rdb *redis.Client, interval time.Duration, onChange func(StreamHealth)) *HealthMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &HealthMonitor{
		rdb:      rdb,
		interval: interval,
		onChange: onChange,
		health:   StreamHealth{Connected: true, LastOK: time.Now()},
	}
}

// Run pings until ctx is cancelled.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check performs a single ping and returns the updated state.
func (m *HealthMonitor) Check(ctx context.Context) StreamHealth {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := m.rdb.Ping(pingCtx).Err()
	elapsed := time.Since(start)

	m.mu.Lock()
	was := m.health.Connected
	if err != nil {
		m.health.Connected = false
		m.health.LastError = err.Error()
		m.health.Latency = ""
	} else {
		m.health.Connected = true
		m.health.LastOK = time.Now()
		m.health.LastError = ""
		m.health.Latency = elapsed.String()
	}
	h := m.health
	m.mu.Unlock()

	if was != h.Connected {
		if h.Connected {
			log.Printf("console: redis reachable again (latency=%v)", elapsed)
		} else {
			log.Printf("console: redis unreachable: %v", err)
		}
		if m.onChange != nil {
			m.onChange(h)
		}
	}
	return h
}

// Health returns the last recorded state.
func (m *HealthMonitor) Health() StreamHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.health
}
