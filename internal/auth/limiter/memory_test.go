package limiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/requestcontext"
)

type MemoryLimiterSuite struct {
	suite.Suite
	limiter *Memory
	base    time.Time
}

func (s *MemoryLimiterSuite) SetupTest() {
	s.limiter = NewMemory(Config{MaxFailures: 3, Window: 15 * time.Minute, LockDuration: 15 * time.Minute})
	s.base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func TestMemoryLimiterSuite(t *testing.T) {
	suite.Run(t, new(MemoryLimiterSuite))
}

func (s *MemoryLimiterSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.base.Add(offset))
}

func (s *MemoryLimiterSuite) TestThreshold() {
	s.Run("stays usable below the threshold", func() {
		ctx := s.at(0)
		for i := 0; i < 2; i++ {
			locked, err := s.limiter.RecordFailure(ctx, "ana@example.com", "10.0.0.1")
			s.Require().NoError(err)
			s.False(locked)
		}
		s.NoError(s.limiter.Check(ctx, "ana@example.com", "10.0.0.1"))
	})

	s.Run("locks on the configured failure", func() {
		ctx := s.at(0)
		var locked bool
		for i := 0; i < 3; i++ {
			var err error
			locked, err = s.limiter.RecordFailure(ctx, "bob@example.com", "10.0.0.1")
			s.Require().NoError(err)
		}
		s.True(locked)
		s.Require().ErrorIs(s.limiter.Check(ctx, "bob@example.com", "10.0.0.1"), ErrLocked)
		s.True(dErrors.HasCode(s.limiter.Check(ctx, "bob@example.com", "10.0.0.1"), dErrors.CodeRateLimited))
	})
}

func (s *MemoryLimiterSuite) TestWindowExpiry() {
	s.Run("failures past the window start a fresh count", func() {
		s.record(s.at(0), "carla@example.com", 2)

		// Third failure lands after the window; it is failure #1 of a new
		// window, not the locking third strike.
		locked, err := s.limiter.RecordFailure(s.at(16*time.Minute), "carla@example.com", "10.0.0.1")
		s.Require().NoError(err)
		s.False(locked)
		s.NoError(s.limiter.Check(s.at(16*time.Minute), "carla@example.com", "10.0.0.1"))
	})
}

func (s *MemoryLimiterSuite) TestLockExpiry() {
	s.Run("rejects until the lock lapses, then forgets prior failures", func() {
		s.record(s.at(0), "dan@example.com", 3)

		s.ErrorIs(s.limiter.Check(s.at(14*time.Minute), "dan@example.com", "10.0.0.1"), ErrLocked)
		s.NoError(s.limiter.Check(s.at(16*time.Minute), "dan@example.com", "10.0.0.1"))

		// Post-expiry the key starts clean: two failures do not re-lock.
		locked, err := s.limiter.RecordFailure(s.at(16*time.Minute), "dan@example.com", "10.0.0.1")
		s.Require().NoError(err)
		s.False(locked)
		locked, err = s.limiter.RecordFailure(s.at(16*time.Minute), "dan@example.com", "10.0.0.1")
		s.Require().NoError(err)
		s.False(locked)
	})
}

func (s *MemoryLimiterSuite) TestClear() {
	s.Run("resets an accumulating count", func() {
		s.record(s.at(0), "eve@example.com", 2)
		s.Require().NoError(s.limiter.Clear(s.at(0), "eve@example.com", "10.0.0.1"))

		locked, err := s.limiter.RecordFailure(s.at(0), "eve@example.com", "10.0.0.1")
		s.Require().NoError(err)
		s.False(locked)
	})

	s.Run("removes an active lock", func() {
		s.record(s.at(0), "frank@example.com", 3)
		s.Require().ErrorIs(s.limiter.Check(s.at(0), "frank@example.com", "10.0.0.1"), ErrLocked)

		s.Require().NoError(s.limiter.Clear(s.at(0), "frank@example.com", "10.0.0.1"))
		s.NoError(s.limiter.Check(s.at(0), "frank@example.com", "10.0.0.1"))
	})
}

func (s *MemoryLimiterSuite) TestKeyIsolation() {
	s.Run("same identifier from another origin is independent", func() {
		ctx := s.at(0)
		s.record(ctx, "gina@example.com", 3)

		s.ErrorIs(s.limiter.Check(ctx, "gina@example.com", "10.0.0.1"), ErrLocked)
		s.NoError(s.limiter.Check(ctx, "gina@example.com", "172.16.0.9"))
	})

	s.Run("delimiter characters cannot forge another key", func() {
		ctx := s.at(0)
		s.record(ctx, "x|ip:10.0.0.1", 3)

		// "u:x|ip:10.0.0.1|ip:10.0.0.1" after sanitization must not collide
		// with the honest key for identifier "x".
		s.NoError(s.limiter.Check(ctx, "x", "10.0.0.1"))
	})
}

func (s *MemoryLimiterSuite) TestConcurrentFailuresAreNotLost() {
	ctx := s.at(0)
	const workers = 8

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.limiter.RecordFailure(ctx, "hank@example.com", "10.0.0.1")
			s.NoError(err)
		}()
	}
	wg.Wait()

	// Eight concurrent failures are well past the threshold of three; the
	// increment must be atomic, so the key ends up locked.
	s.ErrorIs(s.limiter.Check(ctx, "hank@example.com", "10.0.0.1"), ErrLocked)
}

func (s *MemoryLimiterSuite) TestDefaultsApplied() {
	m := NewMemory(Config{})
	s.Equal(3, m.cfg.MaxFailures)
	s.Equal(15*time.Minute, m.cfg.Window)
	s.Equal(15*time.Minute, m.cfg.LockDuration)
}

func (s *MemoryLimiterSuite) record(ctx context.Context, identifier string, n int) {
	s.T().Helper()
	for i := 0; i < n; i++ {
		_, err := s.limiter.RecordFailure(ctx, identifier, "10.0.0.1")
		s.Require().NoError(err)
	}
}
