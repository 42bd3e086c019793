package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"frontdesk/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Manager owns all live call sessions, keyed by session id. Sessions for
// distinct calls are fully independent; the manager only guards its own map.
type Manager struct {
	sessions map[string]*CallSession
	mu       sync.RWMutex
	redis    *redis.Client
	config   *config.Config

	// OnEvict is invoked for sessions removed by the inactivity sweep, so a
	// terminal summary attempt still happens for calls that leaked without a
	// clean disconnect.
	OnEvict func(*CallSession)
}

// NewManager creates a session manager with an optional Redis mirror of
// active-session metadata.
func NewManager(cfg *config.Config) (*Manager, error) {
	// Try to connect to Redis, but don't fail if unavailable
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Redis unavailable, continue without it
		redisClient = nil
	}

	return &Manager{
		sessions: make(map[string]*CallSession),
		redis:    redisClient,
		config:   cfg,
	}, nil
}

// CreateSession registers a new call session
func (sm *Manager) CreateSession(ctx context.Context) (*CallSession, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.config.MaxSessions {
		return nil, fmt.Errorf("maximum sessions reached")
	}

	sessionID := uuid.New().String()
	sess := New(sessionID)

	sm.sessions[sessionID] = sess

	if sm.redis != nil {
		sm.redis.HSet(ctx, "session:"+sessionID, map[string]interface{}{
			"started_at":    sess.StartedAt.Format(time.RFC3339),
			"last_activity": sess.LastActivity.Format(time.RFC3339),
			"status":        "active",
		})
		sm.redis.SAdd(ctx, "active_sessions", sessionID)
		sm.redis.Expire(ctx, "session:"+sessionID, sm.config.SessionTimeout)
	}

	return sess, nil
}

// GetSession retrieves a session by ID
func (sm *Manager) GetSession(sessionID string) (*CallSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sess, exists := sm.sessions[sessionID]
	return sess, exists
}

// RemoveSession removes a session from the registry
func (sm *Manager) RemoveSession(ctx context.Context, sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return
	}
	delete(sm.sessions, sessionID)

	if sm.redis != nil {
		sm.redis.Del(ctx, "session:"+sessionID)
		sm.redis.SRem(ctx, "active_sessions", sessionID)
	}
}

// ActiveSessionCount returns current session count
func (sm *Manager) ActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupInactiveSessions evicts sessions idle past the configured timeout
func (sm *Manager) CleanupInactiveSessions(ctx context.Context) {
	sm.mu.Lock()
	var evicted []*CallSession
	now := time.Now()
	for id, sess := range sm.sessions {
		if now.Sub(sess.LastActivity) > sm.config.SessionTimeout {
			evicted = append(evicted, sess)
			delete(sm.sessions, id)

			if sm.redis != nil {
				sm.redis.Del(ctx, "session:"+id)
				sm.redis.SRem(ctx, "active_sessions", id)
			}
		}
	}
	sm.mu.Unlock()

	// finalize outside the lock; eviction must still yield a summary
	for _, sess := range evicted {
		log.Printf("🧹 [%s] Evicting inactive session", shortID(sess.ID))
		if sm.OnEvict != nil {
			sm.OnEvict(sess)
		}
	}
}

// StartCleanupRoutine starts periodic cleanup of inactive sessions
func (sm *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.CleanupInactiveSessions(ctx)
		}
	}
}

// Shutdown evicts all sessions
func (sm *Manager) Shutdown() {
	sm.mu.Lock()
	var evicted []*CallSession
	for id, sess := range sm.sessions {
		evicted = append(evicted, sess)
		delete(sm.sessions, id)
	}
	redisClient := sm.redis
	sm.redis = nil
	sm.mu.Unlock()

	for _, sess := range evicted {
		if sm.OnEvict != nil {
			sm.OnEvict(sess)
		}
	}

	if redisClient != nil {
		redisClient.Close()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
