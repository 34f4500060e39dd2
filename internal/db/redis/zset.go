package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/linkdex/internal/db"
)

// ZAdd adds or updates a member with the given score.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	cmd := s.b().Zadd().Key(key).ScoreMember().ScoreMember(score, member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRem removes members from a sorted set.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRange returns members between index start and stop (inclusive).
// rev=true walks from the highest score down.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]string, error) {
	min := strconv.FormatInt(start, 10)
	max := strconv.FormatInt(stop, 10)

	var cmd rueidis.Completed
	if rev {
		cmd = s.b().Zrange().Key(key).Min(min).Max(max).Rev().Build()
	} else {
		cmd = s.b().Zrange().Key(key).Min(min).Max(max).Build()
	}
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}

// ZRangeByScore returns members whose score lies in [minScore, maxScore], lowest first.
func (s *Store) ZRangeByScore(ctx context.Context, key string, minScore, maxScore float64) ([]string, error) {
	cmd := s.b().Zrange().Key(key).
		Min(strconv.FormatFloat(minScore, 'f', -1, 64)).
		Max(strconv.FormatFloat(maxScore, 'f', -1, 64)).
		Byscore().Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRangeByScore, Err: err}
	}
	return members, nil
}

// ZCard returns the number of members in a sorted set.
func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Zcard().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpZCard, Err: err}
	}
	return n, nil
}
