// Package bot содержит транспортный слой: приём апдейтов Telegram,
// маршрутизацию команд и отправку ответов. Вся игровая логика живёт
// в пайплайне; бот только конвертирует сообщения и рендерит исходы.
package bot

import (
	"context"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/bot/filters"
	"rolevka.ru/points-bot/internal/bot/middleware"
	"rolevka.ru/points-bot/internal/config"
	"rolevka.ru/points-bot/internal/entitlements"
	"rolevka.ru/points-bot/internal/features/admin"
	"rolevka.ru/points-bot/internal/features/members"
	"rolevka.ru/points-bot/internal/features/shop"
	"rolevka.ru/points-bot/internal/jobs"
	"rolevka.ru/points-bot/internal/ledger"
	"rolevka.ru/points-bot/internal/pipeline"
)

// Bot — главная структура транспортного слоя.
type Bot struct {
	api *telego.Bot
	cfg *config.Config

	pipeline           *pipeline.Pipeline
	memberService      *members.Service
	ledgerService      *ledger.Service
	adminService       *admin.Service
	shopService        *shop.Service
	entitlementService *entitlements.Service
	scheduler          *jobs.Scheduler

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *telego.Bot,
	cfg *config.Config,
	pipe *pipeline.Pipeline,
	memberService *members.Service,
	ledgerService *ledger.Service,
	adminService *admin.Service,
	shopService *shop.Service,
	entitlementService *entitlements.Service,
	scheduler *jobs.Scheduler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                api,
		cfg:                cfg,
		pipeline:           pipe,
		memberService:      memberService,
		ledgerService:      ledgerService,
		adminService:       adminService,
		shopService:        shopService,
		entitlementService: entitlementService,
		scheduler:          scheduler,
		chatFilter:         chatFilter,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		inflight:           make(chan struct{}, maxInFlight),
	}
}

// Start запускает long polling обновлений от Telegram.
// Блокируется до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	defer b.rateLimiter.Close()

	updates, err := b.api.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		log.WithError(err).Error("Не удалось запустить long polling")
		return
	}

	log.WithField("max_inflight", cap(b.inflight)).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}
			if update.Message == nil {
				continue
			}

			msg := update.Message
			b.inflight <- struct{}{}
			go func() {
				defer func() { <-b.inflight }()
				defer middleware.RecoverFromPanic()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

// send отправляет текстовый ответ в чат. Ошибки отправки не фатальны.
func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	_, err := b.api.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось отправить сообщение")
	}
}
