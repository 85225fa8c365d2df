// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, хранилища, сервисы, пайплайн,
// планировщик и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/bot"
	"rolevka.ru/points-bot/internal/bot/filters"
	"rolevka.ru/points-bot/internal/config"
	"rolevka.ru/points-bot/internal/db/postgres"
	"rolevka.ru/points-bot/internal/entitlements"
	"rolevka.ru/points-bot/internal/features/admin"
	"rolevka.ru/points-bot/internal/features/members"
	"rolevka.ru/points-bot/internal/features/shop"
	"rolevka.ru/points-bot/internal/games"
	"rolevka.ru/points-bot/internal/jobs"
	"rolevka.ru/points-bot/internal/ledger"
	"rolevka.ru/points-bot/internal/pipeline"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	API       *telego.Bot
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken,
		telego.WithDefaultLogger(cfg.AppEnv == "development", true),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка авторизации бота: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)

	// === 3. Хранилища и сервисы ===
	memberRepo := members.NewRepository(pool)
	memberService := members.NewService(memberRepo)

	ledgerService := ledger.NewService(ledger.NewPostgresStore(pool))
	entitlementService := entitlements.NewService(entitlements.NewPostgresStore(pool))

	adminRepo := admin.NewRepository(pool)
	adminService := admin.NewService(adminRepo, ledgerService, cfg)
	shopService := shop.NewService(ledgerService, entitlementService)

	// === 4. Пайплайн игровых событий ===
	registry := games.DefaultRegistry()
	pipe := pipeline.New(
		registry, ledgerService, memberService,
		cfg.GameChats, cfg.PipelineCommitRetries, cfg.PipelineRetryBackoff,
	)

	// === 5. Планировщик фоновых задач ===
	scheduler := jobs.NewScheduler(entitlementService, cfg.ExpiryInterval)

	// === 6. Фильтры и бот ===
	chatFilter := filters.NewChatFilter(cfg.FloodChatID, cfg.GameChats, memberService)

	b := bot.New(
		api, cfg,
		pipe, memberService, ledgerService,
		adminService, shopService, entitlementService,
		scheduler, chatFilter,
	)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		API:       api,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Players},
		{2, migration002Ledger},
		{3, migration003Entitlements},
		{4, migration004Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Players = `
CREATE TABLE IF NOT EXISTS players (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    is_admin BOOLEAN DEFAULT FALSE,
    is_banned BOOLEAN DEFAULT FALSE,
    joined_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_players_user_id ON players(user_id);
CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
`

// Балансы — кеш-проекция журнала: balance обязан равняться сумме записей
// ledger_entries участника и восстанавливается пересчётом по журналу.
// processed_messages — сторож идемпотентности: уникальный отпечаток
// на группу записей одного исходного сообщения.
var migration002Ledger = `
CREATE TABLE IF NOT EXISTS balances (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    balance NUMERIC(20,4) NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS ledger_entries (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    amount NUMERIC(20,4) NOT NULL,
    entry_type VARCHAR(32) NOT NULL,
    actor_id BIGINT,
    fingerprint TEXT,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_id ON ledger_entries(user_id, id DESC);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_fingerprint ON ledger_entries(fingerprint);
CREATE TABLE IF NOT EXISTS processed_messages (
    fingerprint TEXT PRIMARY KEY,
    checksum TEXT NOT NULL,
    processed_at TIMESTAMP DEFAULT NOW()
);
`

var migration003Entitlements = `
CREATE TABLE IF NOT EXISTS entitlement_grants (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    grant_kind VARCHAR(64) NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW(),
    revoked_at TIMESTAMP,
    UNIQUE (user_id, grant_kind)
);
CREATE INDEX IF NOT EXISTS idx_entitlement_grants_expiry ON entitlement_grants(active, expires_at);
`

var migration004Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
