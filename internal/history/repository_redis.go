package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRepo ttl 为 0 时记录不过期
func NewRedisRepo(rdb *redis.Client, ttl time.Duration) Repo {
	return &redisRepo{rdb: rdb, ttl: ttl}
}

// key 约定：
//
//	list: hist:hands:{session}     -> JSON(HandRecord), RPUSH 追加
//	list: hist:shuffles:{session}  -> JSON(ShuffleRecord)
//	ttl : 每次写入刷新整条列表的过期时间
func handsKey(session string) string {
	return fmt.Sprintf("hist:hands:%s", session)
}
func shufflesKey(session string) string {
	return fmt.Sprintf("hist:shuffles:%s", session)
}

func (r *redisRepo) push(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p := r.rdb.Pipeline()
	p.RPush(ctx, key, data)
	if r.ttl > 0 {
		p.Expire(ctx, key, r.ttl)
	}
	_, err = p.Exec(ctx)
	return err
}

func (r *redisRepo) SaveHand(ctx context.Context, rec HandRecord) error {
	return r.push(ctx, handsKey(rec.SessionID), rec)
}

func (r *redisRepo) SaveShuffle(ctx context.Context, rec ShuffleRecord) error {
	return r.push(ctx, shufflesKey(rec.SessionID), rec)
}

func (r *redisRepo) Hands(ctx context.Context, session string, limit int) ([]HandRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	return decodeList[HandRecord](r.rdb.LRange(ctx, handsKey(session), start, -1).Result())
}

func (r *redisRepo) Shuffles(ctx context.Context, session string) ([]ShuffleRecord, error) {
	return decodeList[ShuffleRecord](r.rdb.LRange(ctx, shufflesKey(session), 0, -1).Result())
}

func (r *redisRepo) DeleteSession(ctx context.Context, session string) error {
	return r.rdb.Del(ctx, handsKey(session), shufflesKey(session)).Err()
}

func decodeList[T any](raw []string, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, s := range raw {
		var v T
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("decode history record: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
