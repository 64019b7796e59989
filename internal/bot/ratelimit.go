package bot

import (
	"sync"
	"time"
)

// chatLimiter caps LLM chat requests per Telegram chat in a fixed one-minute window.
type chatLimiter struct {
	mu        sync.Mutex
	perMinute int
	now       func() time.Time
	clients   map[int64]*clientInfo
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

func newChatLimiter(perMinute int) *chatLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &chatLimiter{
		perMinute: perMinute,
		now:       time.Now,
		clients:   map[int64]*clientInfo{},
	}
}

// Allow reports whether chatID may send another chat request now.
func (l *chatLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	c, ok := l.clients[chatID]
	if !ok || now.Sub(c.windowStart) >= time.Minute {
		l.clients[chatID] = &clientInfo{windowStart: now, requests: 1}
		return true
	}
	c.requests++
	return c.requests <= l.perMinute
}

// pruneLocked drops chats idle for more than ten minutes.
func (l *chatLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-10 * time.Minute)
	for id, c := range l.clients {
		if c.windowStart.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}

func (l *chatLimiter) activeChats() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
