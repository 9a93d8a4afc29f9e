package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	installments, plans, reservations int64
	failPlans                         error
	today                             time.Time
}

func (r *stubRepo) ExpireInstallments(_ context.Context, today time.Time) (int64, error) {
	r.today = today
	return r.installments, nil
}

func (r *stubRepo) ExpirePlans(context.Context, time.Time) (int64, error) {
	return r.plans, r.failPlans
}

func (r *stubRepo) ExpireReservations(context.Context, time.Time) (int64, error) {
	return r.reservations, nil
}

type stubLocker struct {
	held     bool
	released int
}

func (l *stubLocker) Obtain(context.Context, time.Duration) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func() { l.released++ }, true, nil
}

func TestRunOnce_PublishesPerSweptTable(t *testing.T) {
	broker := events.NewMemoryBroker()
	defer broker.Close()
	ctx := context.Background()

	sub, cancel := broker.Subscribe(ctx)
	defer cancel()

	repo := &stubRepo{installments: 2, reservations: 1}
	s := New(repo, WithBroker(broker))
	s.now = func() time.Time { return time.Date(2026, 4, 2, 17, 30, 0, 0, time.UTC) }

	res, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Installments: 2, Reservations: 1}, res)
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), repo.today)

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-sub:
			got[e.Table] = true
		case <-time.After(time.Second):
			t.Fatal("missing sweep event")
		}
	}
	assert.True(t, got[events.TableInstallments])
	assert.True(t, got[events.TableReservations])
	assert.False(t, got[events.TablePlans])
}

func TestRunOnce_ReportsRepositoryError(t *testing.T) {
	repo := &stubRepo{reservations: 3, failPlans: errors.New("boom")}
	s := New(repo)

	res, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int64(3), res.Reservations)
}

func TestRunOnce_SkipsWhenLockHeld(t *testing.T) {
	locker := &stubLocker{held: true}
	s := New(&stubRepo{installments: 5}, WithLocker(locker))

	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	locker.held = false
	res, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Installments)
	assert.Equal(t, 1, locker.released)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(&stubRepo{}, WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
