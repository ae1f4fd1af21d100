package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestScheduler_RegisterValidation(t *testing.T) {
	s := New(Config{}, zap.NewNop())
	job := funcJob{name: "a", fn: func(context.Context) error { return nil }}

	require.NoError(t, s.Register("@daily", job))
	assert.ErrorIs(t, s.Register("@daily", job), ErrInvalidConfig)
	assert.ErrorIs(t, s.Register("not a schedule", funcJob{name: "b"}), ErrInvalidConfig)
	assert.ErrorIs(t, s.RunNow("missing"), ErrJobNotFound)
}

func TestScheduler_RunNowTracksState(t *testing.T) {
	s := New(Config{JobTimeout: time.Second}, zap.NewNop())
	fail := true
	require.NoError(t, s.Register("0 2 * * *", funcJob{name: "sweep", fn: func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		if fail {
			return errors.New("db down")
		}
		return nil
	}}))
	require.NoError(t, s.Register("@hourly", funcJob{name: "panics", fn: func(context.Context) error {
		panic("boom")
	}}))
	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Error(t, s.RunNow("sweep"))
	states := s.States()
	require.Len(t, states, 2)
	assert.Equal(t, "panics", states[0].Name)
	assert.Equal(t, JobStatusIdle, states[0].Status)
	assert.Equal(t, JobStatusFailed, states[1].Status)
	assert.Equal(t, "db down", states[1].LastError)
	assert.NotNil(t, states[1].NextRunAt)

	fail = false
	require.NoError(t, s.RunNow("sweep"))
	assert.Equal(t, JobStatusSuccess, s.States()[1].Status)

	err := s.RunNow("panics")
	assert.ErrorContains(t, err, "panicked")
}

func TestScheduler_NoOverlap(t *testing.T) {
	s := New(Config{}, zap.NewNop())
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.Register("@daily", funcJob{name: "slow", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.RunNow("slow"))
	}()
	<-started
	assert.ErrorIs(t, s.RunNow("slow"), ErrJobRunning)
	close(release)
	wg.Wait()
}

type mockRepairer struct {
	mock.Mock
}

func (m *mockRepairer) RepairPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type recordingObserver struct {
	repaired []int
	errs     []error
}

func (o *recordingObserver) ObserveReconcile(repaired int, err error) {
	o.repaired = append(o.repaired, repaired)
	o.errs = append(o.errs, err)
}

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (appshared.Lock, error) {
	return nil, shared.ErrConcurrencyConflict
}

func TestReconcileJob(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs and reports", func(t *testing.T) {
		repairer := &mockRepairer{}
		repairer.On("RepairPending", mock.Anything).Return(int64(3), nil).Once()
		observer := &recordingObserver{}
		job := NewReconcileJob(repairer, nil, observer)

		require.NoError(t, job.Run(ctx))
		assert.Equal(t, ReconcileJobName, job.Name())
		assert.Equal(t, []int{3}, observer.repaired)
		repairer.AssertExpectations(t)
	})

	t.Run("propagates failures", func(t *testing.T) {
		repairer := &mockRepairer{}
		repairer.On("RepairPending", mock.Anything).Return(int64(0), errors.New("db down"))
		observer := &recordingObserver{}

		err := NewReconcileJob(repairer, nil, observer).Run(ctx)
		assert.ErrorContains(t, err, "db down")
		require.Len(t, observer.errs, 1)
		assert.Error(t, observer.errs[0])
	})

	t.Run("skips while another instance holds the lock", func(t *testing.T) {
		repairer := &mockRepairer{}
		require.NoError(t, NewReconcileJob(repairer, busyLocker{}, nil).Run(ctx))
		repairer.AssertNotCalled(t, "RepairPending", mock.Anything)
	})
}
