// Package pipeline — pipeline.go содержит оркестрацию обработки сообщения.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/common"
	"rolevka.ru/points-bot/internal/games"
	"rolevka.ru/points-bot/internal/ledger"
)

// Resolver превращает @username из игрового сообщения в Telegram ID.
// Реализуется реестром участников.
type Resolver interface {
	ResolveUsername(ctx context.Context, username string) (int64, error)
}

// Pipeline обрабатывает входящие сообщения чата.
// Классификатор и парсеры — чистые функции, параллельны без ограничений;
// сериализация происходит только в коммите журнала.
type Pipeline struct {
	registry  *games.Registry
	ledger    *ledger.Service
	resolver  Resolver
	gameChats map[int64]string // чат → имя игры (подсказка классификатору)

	commitRetries int
	retryBackoff  time.Duration
}

// New создаёт пайплайн.
// gameChats — отображение ID игровых чатов на имена игр из конфигурации.
func New(registry *games.Registry, ledgerSvc *ledger.Service, resolver Resolver, gameChats map[int64]string, commitRetries int, retryBackoff time.Duration) *Pipeline {
	if commitRetries <= 0 {
		commitRetries = 3
	}
	if retryBackoff <= 0 {
		retryBackoff = 200 * time.Millisecond
	}
	return &Pipeline{
		registry:      registry,
		ledger:        ledgerSvc,
		resolver:      resolver,
		gameChats:     gameChats,
		commitRetries: commitRetries,
		retryBackoff:  retryBackoff,
	}
}

// Process прогоняет одно сообщение через весь пайплайн.
// Любой текст даёт ровно один исход; паник и необработанных ошибок нет.
func (p *Pipeline) Process(ctx context.Context, raw RawMessage) Result {
	msg := p.toGameMessage(raw)

	// 1. Классификация: не событие — молча игнорируем
	category, ok := p.registry.Classify(msg)
	if !ok {
		return Result{Status: StatusIgnored}
	}

	logger := log.WithFields(log.Fields{
		"chat_id":    raw.ChatID,
		"message_id": raw.MessageID,
		"category":   category,
	})

	// 2. Разбор: событие с кривыми данными отклоняется с причиной
	events, err := p.registry.Parse(msg, category)
	if err != nil {
		logger.WithError(err).Info("Сообщение не разобрано")
		return Result{Status: StatusRejected, Category: category, Err: err}
	}

	// 3. Разрешение @username в ID. Неизвестный игрок отклоняет всю группу:
	// частичное применение партии с несколькими победителями недопустимо.
	if err := p.resolvePlayers(ctx, events); err != nil {
		logger.WithError(err).Warn("Не удалось разрешить игроков")
		return Result{Status: StatusRejected, Category: category, Err: err}
	}

	// 4. Коэффициенты и подписанные суммы
	entries, err := BuildEntries(events)
	if err != nil {
		logger.WithError(err).Error("Ошибка подготовки записей")
		return Result{Status: StatusFailed, Category: category, Err: err}
	}

	// 5. Атомарный коммит с отпечатком сообщения
	fingerprint := Fingerprint(raw)
	res, err := p.commitWithRetry(ctx, fingerprint, entries)
	if err != nil {
		if errors.Is(err, ledger.ErrDataIntegrity) {
			// Баг выше по пайплайну: не маскируем, громко логируем
			logger.WithError(err).WithField("fingerprint", fingerprint).
				Error("НАРУШЕНИЕ ЦЕЛОСТНОСТИ: отпечаток переиспользован")
		} else {
			logger.WithError(err).Error("Коммит не прошёл после всех повторов")
		}
		return Result{Status: StatusFailed, Category: category, Err: err}
	}

	if res.Status == ledger.StatusAlreadyApplied {
		return Result{Status: StatusAlreadyApplied, Category: category}
	}
	return Result{
		Status:      StatusApplied,
		Category:    category,
		Entries:     entries,
		NewBalances: res.NewBalances,
	}
}

// toGameMessage собирает облегчённое сообщение для классификатора.
func (p *Pipeline) toGameMessage(raw RawMessage) games.Message {
	return games.Message{
		Text:    raw.Text,
		Game:    p.gameChats[raw.ChatID],
		Sender:  games.PlayerRef{UserID: raw.SenderID, Username: raw.SenderUsername},
		IsReply: raw.ReplyToUserID != 0 || raw.ReplyToUsername != "",
		ReplyTo: games.PlayerRef{UserID: raw.ReplyToUserID, Username: raw.ReplyToUsername},
	}
}

// resolvePlayers дополняет события Telegram ID игроков.
func (p *Pipeline) resolvePlayers(ctx context.Context, events []games.Event) error {
	for i := range events {
		if events[i].Player.Resolved() {
			continue
		}
		id, err := p.resolver.ResolveUsername(ctx, events[i].Player.Username)
		if err != nil {
			return fmt.Errorf("@%s: %w", events[i].Player.Username, common.ErrUnknownPlayer)
		}
		events[i].Player.UserID = id
	}
	return nil
}

// commitWithRetry повторяет коммит при транзиентных сбоях хранилища.
// Повтор безопасен: отпечаток гарантирует идемпотентность.
// Нарушение целостности не повторяется — это не транзиентная ошибка.
func (p *Pipeline) commitWithRetry(ctx context.Context, fingerprint string, entries []ledger.Entry) (*ledger.CommitResult, error) {
	var lastErr error
	backoff := p.retryBackoff

	for attempt := 1; attempt <= p.commitRetries; attempt++ {
		res, err := p.ledger.Commit(ctx, fingerprint, entries)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ledger.ErrDataIntegrity) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err

		log.WithError(err).WithFields(log.Fields{
			"fingerprint": fingerprint,
			"attempt":     attempt,
		}).Warn("Сбой коммита, повторяем")

		if attempt < p.commitRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("коммит не прошёл после %d попыток: %w", p.commitRetries, lastErr)
}
