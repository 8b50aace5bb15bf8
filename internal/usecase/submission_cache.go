package usecase

import (
	"context"
	"fmt"
	"time"
)

type SubmissionCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	DeleteByPattern(ctx context.Context, pattern string) error
}

const (
	submissionsListPrefix = "submissions:list:"

	// SubmissionsGenerationKey is bumped after every committed write. List
	// pages are keyed by generation, so a page computed before a write can
	// never be served after it.
	SubmissionsGenerationKey = "submissions:generation"
)

func SubmissionsListCacheKey(generation int64, limit, offset int) string {
	return fmt.Sprintf("%s%d:%d:%d", submissionsListPrefix, generation, limit, offset)
}

func SubmissionsListCachePattern() string {
	return submissionsListPrefix + "*"
}
