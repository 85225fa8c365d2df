package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeExpiry считает вызовы и по желанию возвращает ошибку.
type fakeExpiry struct {
	calls   int
	revoked int
	err     error
}

func (f *fakeExpiry) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	return f.revoked, f.err
}

func TestRunExpiryCycleSuccess(t *testing.T) {
	fake := &fakeExpiry{revoked: 2}
	s := NewScheduler(fake, 5*time.Minute)

	before := time.Now()
	s.RunExpiryCycle(context.Background())

	if fake.calls != 1 {
		t.Fatalf("ExpireDue вызван %d раз", fake.calls)
	}
	st := s.Status()
	if st.LastCycleOutcome != OutcomeSuccess {
		t.Errorf("исход = %q, ожидался success", st.LastCycleOutcome)
	}
	if st.LastCycleAt.Before(before) {
		t.Errorf("LastCycleAt = %v не обновлён", st.LastCycleAt)
	}
}

func TestRunExpiryCycleFailureThenRecovery(t *testing.T) {
	fake := &fakeExpiry{err: errors.New("база недоступна")}
	s := NewScheduler(fake, 5*time.Minute)

	s.RunExpiryCycle(context.Background())
	if got := s.Status().LastCycleOutcome; got != OutcomeFailure {
		t.Fatalf("исход после сбоя = %q, ожидался failure", got)
	}

	// Сбой не фатален: следующий цикл выполняется и чинит статус
	fake.err = nil
	s.RunExpiryCycle(context.Background())
	if got := s.Status().LastCycleOutcome; got != OutcomeSuccess {
		t.Fatalf("исход после восстановления = %q, ожидался success", got)
	}
	if fake.calls != 2 {
		t.Errorf("ExpireDue вызван %d раз, ожидалось 2", fake.calls)
	}
}

func TestSchedulerStatusLifecycle(t *testing.T) {
	s := NewScheduler(&fakeExpiry{}, time.Hour)

	if s.Status().Running {
		t.Error("планировщик считается запущенным до Start")
	}
	if s.Status().LastCycleOutcome != OutcomeNone {
		t.Error("до первого цикла исход должен быть пустым")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	if !s.Status().Running {
		t.Error("планировщик не запущен после Start")
	}

	s.Stop()
	if s.Status().Running {
		t.Error("планировщик считается запущенным после Stop")
	}
}
