// Package cache keeps cross-run state: which alerts were already sent and
// recently fetched bars.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/model"
)

const (
	defaultPrefix   = "signalsentinel:"
	defaultAlertTTL = 7 * 24 * time.Hour
	defaultBarTTL   = 6 * time.Hour
)

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	AlertTTL time.Duration
	BarTTL   time.Duration
}

// RedisStore deduplicates alerts and caches bars in Redis.
type RedisStore struct {
	client   *goredis.Client
	prefix   string
	alertTTL time.Duration
	barTTL   time.Duration
}

// NewRedisStore connects to Redis and pings the server.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("redis connected")

	s := &RedisStore{
		client:   client,
		prefix:   cfg.Prefix,
		alertTTL: cfg.AlertTTL,
		barTTL:   cfg.BarTTL,
	}
	if s.prefix == "" {
		s.prefix = defaultPrefix
	}
	if s.alertTTL <= 0 {
		s.alertTTL = defaultAlertTTL
	}
	if s.barTTL <= 0 {
		s.barTTL = defaultBarTTL
	}
	return s, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

// Close closes the connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

func alertKey(prefix, symbol string, date time.Time) string {
	return fmt.Sprintf("%salert:%s:%s", prefix, symbol, date.Format("2006-01-02"))
}

// MarkAlerted records that symbol alerted on the bar dated date. It returns
// false when that alert was already recorded.
func (s *RedisStore) MarkAlerted(ctx context.Context, symbol string, date time.Time) (bool, error) {
	ok, err := s.client.SetNX(ctx, alertKey(s.prefix, symbol, date), time.Now().Unix(), s.alertTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// UnmarkAlerted forgets an alert, used when delivery failed so the next run retries it.
func (s *RedisStore) UnmarkAlerted(ctx context.Context, symbol string, date time.Time) error {
	return s.client.Del(ctx, alertKey(s.prefix, symbol, date)).Err()
}

// cachedBar mirrors model.OHLCV with nullable prices, since JSON has no NaN.
type cachedBar struct {
	Time   time.Time `json:"t"`
	Open   *float64  `json:"o"`
	High   *float64  `json:"h"`
	Low    *float64  `json:"l"`
	Close  *float64  `json:"c"`
	Volume *float64  `json:"v"`
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func val(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func encodeBars(bars []model.OHLCV) ([]byte, error) {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{Time: b.Time, Open: ptr(b.Open), High: ptr(b.High), Low: ptr(b.Low), Close: ptr(b.Close), Volume: ptr(b.Volume)}
	}
	return json.Marshal(out)
}

func decodeBars(data []byte) ([]model.OHLCV, error) {
	var in []cachedBar
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, len(in))
	for i, b := range in {
		bars[i] = model.OHLCV{Time: b.Time, Open: val(b.Open), High: val(b.High), Low: val(b.Low), Close: val(b.Close), Volume: val(b.Volume)}
	}
	return bars, nil
}

// GetBars returns cached bars for symbol.
func (s *RedisStore) GetBars(ctx context.Context, symbol string) ([]model.OHLCV, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+"bars:"+symbol).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	bars, err := decodeBars(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached bars: %w", err)
	}
	return bars, true, nil
}

// PutBars caches bars for symbol.
func (s *RedisStore) PutBars(ctx context.Context, symbol string, bars []model.OHLCV) error {
	data, err := encodeBars(bars)
	if err != nil {
		return fmt.Errorf("encode bars: %w", err)
	}
	return s.client.Set(ctx, s.prefix+"bars:"+symbol, data, s.barTTL).Err()
}
