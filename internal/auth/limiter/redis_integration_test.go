//go:build integration

package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"userdir/internal/auth/limiter"
	"userdir/pkg/testutil/containers"
)

type RedisLimiterIntegrationSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	limiter *limiter.Redis
	ctx     context.Context
}

func TestRedisLimiterIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLimiterIntegrationSuite))
}

func (s *RedisLimiterIntegrationSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ctx = context.Background()
}

func (s *RedisLimiterIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.limiter = limiter.NewRedis(s.redis.Client, limiter.Config{
		MaxFailures:  3,
		Window:       15 * time.Minute,
		LockDuration: 2 * time.Second,
	})
}

func (s *RedisLimiterIntegrationSuite) TestLockoutAgainstRealRedis() {
	var locked bool
	for i := 0; i < 3; i++ {
		var err error
		locked, err = s.limiter.RecordFailure(s.ctx, "ana@example.com", "10.0.0.1")
		s.Require().NoError(err)
	}
	s.True(locked)
	s.Require().ErrorIs(s.limiter.Check(s.ctx, "ana@example.com", "10.0.0.1"), limiter.ErrLocked)

	// The short lock duration expires via real TTL.
	s.Eventually(func() bool {
		return s.limiter.Check(s.ctx, "ana@example.com", "10.0.0.1") == nil
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisLimiterIntegrationSuite) TestClearAgainstRealRedis() {
	for i := 0; i < 3; i++ {
		_, err := s.limiter.RecordFailure(s.ctx, "bob@example.com", "10.0.0.1")
		s.Require().NoError(err)
	}
	s.Require().ErrorIs(s.limiter.Check(s.ctx, "bob@example.com", "10.0.0.1"), limiter.ErrLocked)

	s.Require().NoError(s.limiter.Clear(s.ctx, "bob@example.com", "10.0.0.1"))
	s.NoError(s.limiter.Check(s.ctx, "bob@example.com", "10.0.0.1"))
}
