package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// OnlineFlag menyimpan toggle online/offline merchant supaya survive reload.
type OnlineFlag struct {
	RDB redis.Cmdable
}

func (f *OnlineFlag) SetOnline(ctx context.Context, merchantID string, online bool) error {
	v := "0"
	if online {
		v = "1"
	}
	return f.RDB.Set(ctx, fmt.Sprintf(KeyMerchantOnline, merchantID), v, 0).Err()
}

func (f *OnlineFlag) Online(ctx context.Context, merchantID string) (bool, error) {
	v, err := f.RDB.Get(ctx, fmt.Sprintf(KeyMerchantOnline, merchantID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

// Deduper drops envelopes already seen (at-least-once transports redeliver).
type Deduper struct {
	RDB     redis.Cmdable
	Service string
}

func (d *Deduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), "1", TTLDedup).Result()
}
