package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"supashop-api/internal/model"
)

const defaultQueueKey = "verification:expiry"

// CodeExpiry is one scheduled clear of a verification code. Due is the unix
// millisecond time it fell due.
type CodeExpiry struct {
	Kind  model.AccountKind
	Email string
	Code  string
	Due   int64
}

func (e CodeExpiry) member() string {
	return string(e.Kind) + "|" + e.Email + "|" + e.Code
}

func parseMember(member string) (CodeExpiry, error) {
	first := strings.Index(member, "|")
	last := strings.LastIndex(member, "|")
	if first < 0 || first == last {
		return CodeExpiry{}, fmt.Errorf("malformed expiry entry %q", member)
	}

	e := CodeExpiry{
		Kind:  model.AccountKind(member[:first]),
		Email: member[first+1 : last],
		Code:  member[last+1:],
	}
	if !e.Kind.Valid() || e.Email == "" || e.Code == "" {
		return CodeExpiry{}, fmt.Errorf("malformed expiry entry %q", member)
	}
	return e, nil
}

// ExpiryQueue is a delayed queue of code clears kept in a Redis sorted set
// scored by due time in unix milliseconds. Entries outlive the process that
// scheduled them.
type ExpiryQueue struct {
	client redis.UniversalClient
	key    string
	delay  time.Duration
	now    func() time.Time
}

func NewExpiryQueue(client redis.UniversalClient, delay time.Duration) *ExpiryQueue {
	return &ExpiryQueue{client: client, key: defaultQueueKey, delay: delay, now: time.Now}
}

func (q *ExpiryQueue) Schedule(ctx context.Context, kind model.AccountKind, email string, code string) error {
	due := q.now().Add(q.delay).UnixMilli()
	entry := CodeExpiry{Kind: kind, Email: email, Code: code}

	if err := q.client.ZAdd(ctx, q.key, redis.Z{Score: float64(due), Member: entry.member()}).Err(); err != nil {
		return fmt.Errorf("schedule code expiry: %w", err)
	}
	return nil
}

// Claim removes and returns up to limit due entries. An entry is returned
// only to the caller whose ZREM removed it, so concurrent sweepers never
// process the same entry twice. full reports that limit due entries were
// read, whether or not this caller won them, so more may be waiting.
func (q *ExpiryQueue) Claim(ctx context.Context, limit int64) (claimed []CodeExpiry, full bool, err error) {
	members, err := q.client.ZRangeByScoreWithScores(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(q.now().UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, false, fmt.Errorf("read due expiries: %w", err)
	}

	full = int64(len(members)) >= limit
	claimed = make([]CodeExpiry, 0, len(members))
	for _, z := range members {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		removed, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return claimed, false, fmt.Errorf("claim expiry: %w", err)
		}
		if removed != 1 {
			continue
		}

		entry, err := parseMember(member)
		if err != nil {
			continue
		}
		entry.Due = int64(z.Score)
		claimed = append(claimed, entry)
	}

	return claimed, full, nil
}

// Requeue puts a claimed entry back under its original due time, so the next
// sweep retries it. A newer schedule of the same code is kept.
func (q *ExpiryQueue) Requeue(ctx context.Context, e CodeExpiry) error {
	due := e.Due
	if due == 0 {
		due = q.now().UnixMilli()
	}
	if err := q.client.ZAddNX(ctx, q.key, redis.Z{Score: float64(due), Member: e.member()}).Err(); err != nil {
		return fmt.Errorf("requeue code expiry: %w", err)
	}
	return nil
}

func (q *ExpiryQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}
