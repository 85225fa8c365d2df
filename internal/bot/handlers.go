// Package bot — handlers.go маршрутизирует сообщения: команды обрабатываются
// напрямую, всё остальное уходит в пайплайн игровых событий.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/bot/middleware"
	"rolevka.ru/points-bot/internal/common"
	"rolevka.ru/points-bot/internal/features/shop"
	"rolevka.ru/points-bot/internal/jobs"
	"rolevka.ru/points-bot/internal/ledger"
	"rolevka.ru/points-bot/internal/pipeline"
)

func (b *Bot) handleMessage(ctx context.Context, msg *telego.Message) {
	middleware.LogMessage(msg)

	if !b.chatFilter.CheckAccess(ctx, msg) {
		return
	}

	// Регистрируем/обновляем участника на каждое сообщение
	if msg.From != nil {
		err := b.memberService.EnsureMember(ctx, msg.From.ID, msg.From.Username, msg.From.FirstName, msg.From.LastName)
		if err != nil {
			log.WithError(err).Warn("Не удалось зарегистрировать участника")
		}
	}

	if strings.HasPrefix(msg.Text, "/") {
		b.handleCommand(ctx, msg)
		return
	}

	b.handleGameMessage(ctx, msg)
}

// handleGameMessage прогоняет обычное сообщение через пайплайн
// и рендерит структурированный исход в текст ответа.
func (b *Bot) handleGameMessage(ctx context.Context, msg *telego.Message) {
	raw := pipeline.RawMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
	}
	if msg.From != nil {
		raw.SenderID = msg.From.ID
		raw.SenderUsername = msg.From.Username
	}
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		raw.ReplyToUserID = msg.ReplyToMessage.From.ID
		raw.ReplyToUsername = msg.ReplyToMessage.From.Username
	}

	result := b.pipeline.Process(ctx, raw)

	switch result.Status {
	case pipeline.StatusIgnored:
		// не событие — молчим

	case pipeline.StatusApplied:
		b.send(ctx, msg.Chat.ID, renderApplied(result))

	case pipeline.StatusAlreadyApplied:
		// повторная доставка: уже начислено, не спамим в чат
		log.WithField("message_id", msg.MessageID).Debug("Повторное сообщение, начисление уже было")

	case pipeline.StatusRejected:
		b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(result.Err))

	case pipeline.StatusFailed:
		b.send(ctx, msg.Chat.ID, "⚠️ Временная ошибка, начисление не прошло. Попробуйте позже.")
	}
}

// renderApplied собирает текст подтверждения начислений.
func renderApplied(result pipeline.Result) string {
	var sb strings.Builder
	sb.WriteString("✅ Начисление очков:\n")
	for _, e := range result.Entries {
		sb.WriteString(fmt.Sprintf("%s — %s", common.FormatPointsDelta(e.Amount), e.Description))
		if balance, ok := result.NewBalances[e.UserID]; ok {
			sb.WriteString(fmt.Sprintf(" (баланс: %s)", common.FormatPoints(balance)))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) handleCommand(ctx context.Context, msg *telego.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID

	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("Rate limit: команда отброшена")
		return
	}

	fields := strings.Fields(msg.Text)
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch cmd {
	case "/balance":
		b.cmdBalance(ctx, msg)
	case "/history":
		b.cmdHistory(ctx, msg)
	case "/shop":
		b.cmdShop(ctx, msg)
	case "/buy":
		b.cmdBuy(ctx, msg, fields)
	case "/grants":
		b.cmdGrants(ctx, msg)
	case "/admin":
		b.cmdAdmin(ctx, msg, fields)
	case "/give":
		b.cmdGivePoints(ctx, msg, fields, false)
	case "/take":
		b.cmdGivePoints(ctx, msg, fields, true)
	case "/status":
		b.cmdStatus(ctx, msg)
	}
}

func (b *Bot) cmdBalance(ctx context.Context, msg *telego.Message) {
	balance, err := b.ledgerService.GetBalance(ctx, msg.From.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		b.send(ctx, msg.Chat.ID, "⚠️ Не удалось получить баланс")
		return
	}
	b.send(ctx, msg.Chat.ID, "💰 Ваш баланс: "+common.FormatPoints(balance))
}

func (b *Bot) cmdHistory(ctx context.Context, msg *telego.Message) {
	entries, err := b.ledgerService.GetHistory(ctx, msg.From.ID, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения истории")
		b.send(ctx, msg.Chat.ID, "⚠️ Не удалось получить историю")
		return
	}
	if len(entries) == 0 {
		b.send(ctx, msg.Chat.ID, "📋 У вас пока нет операций")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d операций:\n", len(entries)))
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s | %s | %s\n",
			i+1, common.FormatDateTime(e.CreatedAt), common.FormatPointsDelta(e.Amount), e.Description))
	}
	b.send(ctx, msg.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) cmdShop(ctx context.Context, msg *telego.Message) {
	var sb strings.Builder
	sb.WriteString("🛒 Магазин (покупка: /buy <код>):\n")
	for _, item := range shopCatalogLines() {
		sb.WriteString(item + "\n")
	}
	b.send(ctx, msg.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) cmdBuy(ctx context.Context, msg *telego.Message, fields []string) {
	if len(fields) < 2 {
		b.send(ctx, msg.Chat.ID, "Использование: /buy <код товара>")
		return
	}

	fp := pipeline.AdminFingerprint("buy", msg.Chat.ID, msg.MessageID)
	item, err := b.shopService.Buy(ctx, fp, msg.From.ID, fields[1])
	if err != nil {
		switch {
		case errors.Is(err, common.ErrItemNotFound),
			errors.Is(err, common.ErrAlreadyOwned),
			errors.Is(err, common.ErrInsufficientBalance):
			b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(err))
		default:
			log.WithError(err).Error("Ошибка покупки")
			b.send(ctx, msg.Chat.ID, "⚠️ Покупка не прошла, попробуйте позже")
		}
		return
	}
	days := int(item.Duration.Hours() / 24)
	b.send(ctx, msg.Chat.ID, fmt.Sprintf("🎉 Куплено: %s (на %d %s)", item.Title, days, common.PluralizeDays(days)))
}

func (b *Bot) cmdGrants(ctx context.Context, msg *telego.Message) {
	grants, err := b.entitlementService.List(ctx, msg.From.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения грантов")
		b.send(ctx, msg.Chat.ID, "⚠️ Не удалось получить список покупок")
		return
	}
	if len(grants) == 0 {
		b.send(ctx, msg.Chat.ID, "📦 Активных покупок нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("📦 Активные покупки:\n")
	for _, g := range grants {
		sb.WriteString(fmt.Sprintf("• %s — до %s\n", g.Kind, common.FormatDateTime(g.ExpiresAt)))
	}
	b.send(ctx, msg.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

// cmdAdmin аутентифицирует администратора. Только в личке:
// пароль в общем чате увидят все.
func (b *Bot) cmdAdmin(ctx context.Context, msg *telego.Message, fields []string) {
	if msg.Chat.Type != telego.ChatTypePrivate {
		b.send(ctx, msg.Chat.ID, "⚠️ Авторизация — только в личных сообщениях")
		return
	}
	if !b.adminService.IsAdmin(msg.From.ID) {
		b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(common.ErrNotAdmin))
		return
	}
	if len(fields) < 2 {
		b.send(ctx, msg.Chat.ID, "Использование: /admin <пароль>")
		return
	}

	if err := b.adminService.VerifyPassword(ctx, msg.From.ID, fields[1]); err != nil {
		b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(err))
		return
	}
	b.send(ctx, msg.Chat.ID, "🔓 Сессия открыта на 24 часа")
}

// cmdGivePoints обрабатывает /give и /take: начисление и списание админом.
// Идёт через тот же коммит журнала, что и игровые события.
func (b *Bot) cmdGivePoints(ctx context.Context, msg *telego.Message, fields []string, take bool) {
	if !b.adminService.IsAdmin(msg.From.ID) || !b.adminService.HasActiveSession(ctx, msg.From.ID) {
		b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(common.ErrNotAdmin))
		return
	}
	if len(fields) < 3 {
		b.send(ctx, msg.Chat.ID, "Использование: /give @user <сумма> [причина]")
		return
	}

	username := strings.TrimPrefix(fields[1], "@")
	targetID, err := b.memberService.ResolveUsername(ctx, username)
	if err != nil {
		b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(common.ErrUserNotFound))
		return
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(fields[2], ",", "."))
	if err != nil || amount.Sign() <= 0 {
		b.send(ctx, msg.Chat.ID, "⚠️ "+capitalizeErr(common.ErrInvalidAmount))
		return
	}

	reason := "Ручная операция администратора"
	if len(fields) > 3 {
		reason = strings.Join(fields[3:], " ")
	}

	var res *ledger.CommitResult
	if take {
		fp := pipeline.AdminFingerprint("admin-take", msg.Chat.ID, msg.MessageID)
		res, err = b.adminService.TakePoints(ctx, fp, msg.From.ID, targetID, amount, reason)
	} else {
		fp := pipeline.AdminFingerprint("admin-give", msg.Chat.ID, msg.MessageID)
		res, err = b.adminService.GivePoints(ctx, fp, msg.From.ID, targetID, amount, reason)
	}
	if err != nil {
		log.WithError(err).Error("Ошибка админской операции")
		b.send(ctx, msg.Chat.ID, "⚠️ Операция не прошла")
		return
	}
	if res.Status == ledger.StatusAlreadyApplied {
		b.send(ctx, msg.Chat.ID, "ℹ️ Эта команда уже была применена")
		return
	}
	b.send(ctx, msg.Chat.ID, fmt.Sprintf("✅ Готово. Новый баланс @%s: %s",
		username, common.FormatPoints(res.NewBalances[targetID])))
}

// cmdStatus показывает состояние фонового планировщика (для админов).
func (b *Bot) cmdStatus(ctx context.Context, msg *telego.Message) {
	if !b.adminService.IsAdmin(msg.From.ID) {
		return
	}

	st := b.scheduler.Status()
	state := "остановлен"
	if st.Running {
		state = "работает"
	}
	last := "ещё не было"
	if !st.LastCycleAt.IsZero() {
		last = common.FormatDateTime(st.LastCycleAt)
		if st.LastCycleOutcome == jobs.OutcomeFailure {
			last += " (сбой)"
		}
	}
	b.send(ctx, msg.Chat.ID, fmt.Sprintf("⚙️ Планировщик: %s\nПоследний цикл: %s", state, last))
}

// shopCatalogLines форматирует каталог магазина для вывода.
func shopCatalogLines() []string {
	out := make([]string, 0, len(shop.Catalog))
	for _, item := range shop.Catalog {
		out = append(out, fmt.Sprintf("• %s — %s (код: %s)", item.Title, common.FormatPoints(item.Price), item.Code))
	}
	return out
}

// capitalizeErr приводит текст ошибки к виду сообщения для пользователя.
func capitalizeErr(err error) string {
	if err == nil {
		return ""
	}
	runes := []rune(err.Error())
	if len(runes) == 0 {
		return ""
	}
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
