package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"perfdash-backend/internal/models"
)

// DashboardChannel is the redis channel notices are published on.
const DashboardChannel = "dashboard_updates"

// Notifier delivers operator notices. Publish must not block on slow
// consumers.
type Notifier interface {
	Publish(ctx context.Context, n models.Notice)
}

type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, n models.Notice) {
	for _, nt := range m {
		if nt != nil {
			nt.Publish(ctx, n)
		}
	}
}

// NoticeLog keeps the most recent notices for clients that poll instead of
// holding a websocket open.
type NoticeLog struct {
	mu      sync.Mutex
	notices []models.Notice
	limit   int
}

func NewNoticeLog(limit int) *NoticeLog {
	if limit <= 0 {
		limit = 50
	}
	return &NoticeLog{limit: limit}
}

func (l *NoticeLog) Publish(_ context.Context, n models.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
	if over := len(l.notices) - l.limit; over > 0 {
		l.notices = append([]models.Notice(nil), l.notices[over:]...)
	}
}

// Recent returns notices newest first.
func (l *NoticeLog) Recent() []models.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Notice, len(l.notices))
	for i, n := range l.notices {
		out[len(l.notices)-1-i] = n
	}
	return out
}

// RedisNotifier publishes notices on DashboardChannel so every server
// replica's websocket hub can fan them out.
type RedisNotifier struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{redis: client, logger: logger}
}

func (r *RedisNotifier) Publish(ctx context.Context, n models.Notice) {
	data, _ := json.Marshal(models.WSMessage{Type: "notice", Payload: n})
	if err := r.redis.Publish(ctx, DashboardChannel, string(data)).Err(); err != nil {
		r.logger.Warn("publish notice", zap.String("code", n.Code), zap.Error(err))
	}
}
