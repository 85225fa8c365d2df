// Package admin — service.go содержит логику аутентификации и выдачи очков.
// Админские начисления идут через тот же атомарный коммит журнала,
// что и игровые события, с теми же гарантиями идемпотентности.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"rolevka.ru/points-bot/internal/common"
	"rolevka.ru/points-bot/internal/config"
	"rolevka.ru/points-bot/internal/ledger"
)

// Service управляет админ-операциями.
type Service struct {
	repo   *Repository
	ledger *ledger.Service
	cfg    *config.Config
}

// NewService создаёт сервис админки.
func NewService(repo *Repository, ledgerSvc *ledger.Service, cfg *config.Config) *Service {
	return &Service{repo: repo, ledger: ledgerSvc, cfg: cfg}
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (s *Service) IsAdmin(userID int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// VerifyPassword проверяет пароль администратора (Argon2id).
// Защита от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	attempts, err := s.repo.GetRecentAttempts(ctx, userID, 1*time.Hour)
	if err != nil {
		return err
	}
	if attempts >= 3 {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)

	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Error("Ошибка записи попытки входа")
	}

	if !match {
		return common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	return s.repo.CreateSession(ctx, session)
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.repo.GetActiveSession(ctx, userID)
	return err == nil && session != nil
}

// GivePoints начисляет очки участнику от имени администратора.
// fingerprint — отпечаток команды админа: повтор команды (или повторная
// доставка) не начислит очки дважды.
func (s *Service) GivePoints(ctx context.Context, fingerprint string, actorID, targetID int64, amount decimal.Decimal, reason string) (*ledger.CommitResult, error) {
	if amount.Sign() <= 0 {
		return nil, common.ErrInvalidAmount
	}
	entry := ledger.Entry{
		UserID:      targetID,
		Amount:      amount,
		Type:        ledger.TypeAdd,
		ActorID:     &actorID,
		Description: reason,
	}
	return s.ledger.Commit(ctx, fingerprint, []ledger.Entry{entry})
}

// TakePoints списывает очки с участника от имени администратора.
func (s *Service) TakePoints(ctx context.Context, fingerprint string, actorID, targetID int64, amount decimal.Decimal, reason string) (*ledger.CommitResult, error) {
	if amount.Sign() <= 0 {
		return nil, common.ErrInvalidAmount
	}
	entry := ledger.Entry{
		UserID:      targetID,
		Amount:      amount.Neg(),
		Type:        ledger.TypeRemove,
		ActorID:     &actorID,
		Description: reason,
	}
	return s.ledger.Commit(ctx, fingerprint, []ledger.Entry{entry})
}

// verifyArgon2id проверяет пароль против PHC-строки вида
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>.
func verifyArgon2id(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	actual := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// generateSecureToken создаёт криптостойкий токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// rand.Read по контракту crypto/rand не возвращает ошибку на живой системе
		log.WithError(err).Error("Ошибка генерации токена")
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
