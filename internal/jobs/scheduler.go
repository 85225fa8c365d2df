// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает пятиминутный цикл отзыва просроченных грантов
// и ведёт снимок состояния для внешнего мониторинга.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ExpiryService — то, что планировщик дёргает каждый цикл.
type ExpiryService interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// CycleOutcome — итог последнего цикла.
type CycleOutcome string

const (
	OutcomeNone    CycleOutcome = ""        // ещё не было ни одного цикла
	OutcomeSuccess CycleOutcome = "success"
	OutcomeFailure CycleOutcome = "failure"
)

// Status — снимок состояния планировщика для health-проверок.
type Status struct {
	Running          bool
	LastCycleAt      time.Time
	LastCycleOutcome CycleOutcome
}

// Scheduler владеет жизненным циклом фоновых задач: Start, Stop, Status.
// Никаких глобальных синглтонов — экземпляр создаёт и держит app.
type Scheduler struct {
	cron    *cron.Cron
	expiry  ExpiryService
	spec    string // cron-выражение цикла отзыва

	mu     sync.Mutex
	status Status
}

// NewScheduler создаёт планировщик с московским часовым поясом.
// interval — период цикла отзыва (доменное значение: пять минут).
func NewScheduler(expiry ExpiryService, interval time.Duration) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		expiry: expiry,
		spec:   "@every " + interval.String(),
	}
}

// Start запускает фоновые задачи. Отмена ctx действует на границе цикла:
// идущая транзакция отзыва не прерывается посередине.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.RunExpiryCycle(ctx)
	})

	s.cron.Start()

	s.mu.Lock()
	s.status.Running = true
	s.mu.Unlock()

	log.WithField("spec", s.spec).Info("Планировщик задач запущен")
}

// RunExpiryCycle выполняет один цикл отзыва просроченных грантов.
// Сбой цикла логируется и не фатален: следующий тик попробует снова.
func (s *Scheduler) RunExpiryCycle(ctx context.Context) {
	now := time.Now()
	revoked, err := s.expiry.ExpireDue(ctx, now)

	s.mu.Lock()
	s.status.LastCycleAt = now
	if err != nil {
		s.status.LastCycleOutcome = OutcomeFailure
	} else {
		s.status.LastCycleOutcome = OutcomeSuccess
	}
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).Error("[CRON] Цикл отзыва грантов не прошёл")
		return
	}
	if revoked > 0 {
		log.WithField("revoked", revoked).Info("[CRON] Цикл отзыва грантов завершён")
	} else {
		log.Debug("[CRON] Цикл отзыва грантов: просроченных нет")
	}
}

// Stop останавливает планировщик, дождавшись текущего цикла.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	s.status.Running = false
	s.mu.Unlock()

	log.Info("Планировщик задач остановлен")
}

// Status возвращает снимок состояния для внешнего мониторинга.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
