package repository

import (
	"context"
	"sync"
	"time"

	"github.com/interair/filmtherapy-chat-bot/internal/model"
)

// CachedScheduleRepository кэширует правила расписания с коротким TTL,
// чтобы не ходить в хранилище на каждый запрос доступности. Кэш принадлежит
// конкретному экземпляру, часы инжектируются — никакого глобального
// изменяемого состояния.
//
// Между правкой правил в обход этого экземпляра и её видимостью возможна
// задержка до TTL.
type CachedScheduleRepository struct {
	inner ScheduleRepository
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	rules     []model.ScheduleRule
	valid     bool
	fetchedAt time.Time
}

func NewCachedScheduleRepository(inner ScheduleRepository, ttl time.Duration) *CachedScheduleRepository {
	return &CachedScheduleRepository{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (r *CachedScheduleRepository) WithClock(now func() time.Time) *CachedScheduleRepository {
	r.now = now
	return r
}

func (r *CachedScheduleRepository) GetAll(ctx context.Context) ([]model.ScheduleRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.valid && r.now().Sub(r.fetchedAt) < r.ttl {
		return append([]model.ScheduleRule(nil), r.rules...), nil
	}

	rules, err := r.inner.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	r.rules = rules
	r.valid = true
	r.fetchedAt = r.now()
	return append([]model.ScheduleRule(nil), rules...), nil
}

// Save пишет сквозь кэш и сбрасывает его.
func (r *CachedScheduleRepository) Save(ctx context.Context, rules []model.ScheduleRule) error {
	if err := r.inner.Save(ctx, rules); err != nil {
		return err
	}
	r.mu.Lock()
	r.rules = nil
	r.valid = false
	r.mu.Unlock()
	return nil
}
