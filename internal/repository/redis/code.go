// Package redis keeps one-time codes in redis for multi-instance deployments.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// DefaultRetention is how long a record outlives its expiry, so that a late
// consume still reports the code as expired rather than missing.
const DefaultRetention = 24 * time.Hour

// replaceLua installs a new code unless the current one was sent after the cutoff.
// KEYS[1] = subject key, KEYS[2] = expiry index
// ARGV[1] = subject, ARGV[2] = code, ARGV[3] = expires_at ms, ARGV[4] = last_sent_at ms
// ARGV[5] = cutoff ms, ARGV[6] = key ttl ms, ARGV[7] = value key prefix
//
// Returns {replaced, code, expires_at, last_sent_at}.
var replaceLua = redis.NewScript(`
local cur = redis.call('HMGET', KEYS[1], 'code', 'expires_at', 'last_sent_at')
if cur[1] then
  if tonumber(cur[3]) > tonumber(ARGV[5]) then
    return {0, cur[1], cur[2], cur[3]}
  end
  redis.call('DEL', ARGV[7] .. cur[1])
end
redis.call('HSET', KEYS[1], 'code', ARGV[2], 'expires_at', ARGV[3], 'last_sent_at', ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
redis.call('SET', ARGV[7] .. ARGV[2], ARGV[1], 'PX', ARGV[6])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
return {1, ARGV[2], ARGV[3], ARGV[4]}
`)

// deleteIfMatchLua removes the record only if it still holds the given code.
// KEYS[1] = subject key, KEYS[2] = value key, KEYS[3] = expiry index
// ARGV[1] = code, ARGV[2] = subject
var deleteIfMatchLua = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code') == ARGV[1] then
  redis.call('DEL', KEYS[1], KEYS[2])
  redis.call('ZREM', KEYS[3], ARGV[2])
  return 1
end
return 0
`)

// deleteExpiredLua removes every record whose expiry is before now.
// KEYS[1] = expiry index
// ARGV[1] = now ms, ARGV[2] = subject key prefix, ARGV[3] = value key prefix
var deleteExpiredLua = redis.NewScript(`
local now = tonumber(ARGV[1])
local subjects = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1])
local n = 0
for _, s in ipairs(subjects) do
  local k = ARGV[2] .. s
  local cur = redis.call('HMGET', k, 'code', 'expires_at')
  if cur[1] and tonumber(cur[2]) < now then
    redis.call('DEL', k, ARGV[3] .. cur[1])
    n = n + 1
  end
  if (not cur[1]) or tonumber(cur[2]) < now then
    redis.call('ZREM', KEYS[1], s)
  end
end
return n
`)

var _ model.CodeStore = (*CodeStore)(nil)

// CodeStore implements model.CodeStore for one code kind.
type CodeStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewCodeStore creates a store whose keys start with prefix:kind.
func NewCodeStore(client redis.UniversalClient, prefix string, kind model.CodeKind) *CodeStore {
	if prefix == "" {
		prefix = "campusmarket"
	}
	return &CodeStore{
		client:    client,
		prefix:    prefix + ":" + string(kind),
		retention: DefaultRetention,
	}
}

func (s *CodeStore) subjectPrefix() string { return s.prefix + ":subj:" }
func (s *CodeStore) valuePrefix() string   { return s.prefix + ":code:" }
func (s *CodeStore) expiryKey() string     { return s.prefix + ":expiry" }

func (s *CodeStore) Replace(ctx context.Context, code model.OneTimeCode, throttleCutoff time.Time) (model.OneTimeCode, bool, error) {
	ttl := time.Until(code.ExpiresAt) + s.retention
	if ttl < time.Second {
		ttl = time.Second
	}

	res, err := replaceLua.Run(ctx, s.client,
		[]string{s.subjectPrefix() + code.Subject, s.expiryKey()},
		code.Subject,
		code.Value,
		code.ExpiresAt.UnixMilli(),
		code.LastSentAt.UnixMilli(),
		throttleCutoff.UnixMilli(),
		ttl.Milliseconds(),
		s.valuePrefix(),
	).Slice()
	if err != nil {
		return model.OneTimeCode{}, false, fmt.Errorf("failed to replace code: %w", err)
	}
	if len(res) != 4 {
		return model.OneTimeCode{}, false, fmt.Errorf("failed to replace code: unexpected reply %v", res)
	}

	replaced, _ := res[0].(int64)
	current, err := parseRecord(code.Subject, res[1], res[2], res[3])
	if err != nil {
		return model.OneTimeCode{}, false, err
	}

	return current, replaced == 1, nil
}

func (s *CodeStore) GetBySubject(ctx context.Context, subject string) (model.OneTimeCode, error) {
	vals, err := s.client.HMGet(ctx, s.subjectPrefix()+subject, "code", "expires_at", "last_sent_at").Result()
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("failed to get code: %w", err)
	}
	if len(vals) != 3 || vals[0] == nil {
		return model.OneTimeCode{}, model.ErrNotFound
	}
	return parseRecord(subject, vals[0], vals[1], vals[2])
}

func (s *CodeStore) GetByValue(ctx context.Context, value string) (model.OneTimeCode, error) {
	subject, err := s.client.Get(ctx, s.valuePrefix()+value).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.OneTimeCode{}, model.ErrNotFound
		}
		return model.OneTimeCode{}, fmt.Errorf("failed to get code: %w", err)
	}

	code, err := s.GetBySubject(ctx, subject)
	if err != nil {
		return model.OneTimeCode{}, err
	}
	if code.Value != value {
		return model.OneTimeCode{}, model.ErrNotFound
	}
	return code, nil
}

func (s *CodeStore) DeleteIfMatch(ctx context.Context, code model.OneTimeCode) (bool, error) {
	n, err := deleteIfMatchLua.Run(ctx, s.client,
		[]string{s.subjectPrefix() + code.Subject, s.valuePrefix() + code.Value, s.expiryKey()},
		code.Value,
		code.Subject,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to delete code: %w", err)
	}
	return n == 1, nil
}

func (s *CodeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := deleteExpiredLua.Run(ctx, s.client,
		[]string{s.expiryKey()},
		now.UnixMilli(),
		s.subjectPrefix(),
		s.valuePrefix(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}
	return n, nil
}

func parseRecord(subject string, code, expiresAt, lastSentAt any) (model.OneTimeCode, error) {
	value, ok := code.(string)
	if !ok {
		return model.OneTimeCode{}, fmt.Errorf("malformed code record for %s", subject)
	}
	exp, err := parseMillis(expiresAt)
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("malformed expires_at for %s: %w", subject, err)
	}
	sent, err := parseMillis(lastSentAt)
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("malformed last_sent_at for %s: %w", subject, err)
	}

	return model.OneTimeCode{
		Subject:    subject,
		Value:      value,
		ExpiresAt:  exp,
		LastSentAt: sent,
	}, nil
}

func parseMillis(v any) (time.Time, error) {
	var ms int64
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		ms = n
	case int64:
		ms = t
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
	return time.UnixMilli(ms).UTC(), nil
}
