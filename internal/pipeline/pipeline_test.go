package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rolevka.ru/points-bot/internal/games"
	"rolevka.ru/points-bot/internal/ledger"
)

// fakeResolver разрешает username в ID по фиксированной таблице.
type fakeResolver struct {
	users map[string]int64
}

func (r *fakeResolver) ResolveUsername(ctx context.Context, username string) (int64, error) {
	if id, ok := r.users[username]; ok {
		return id, nil
	}
	return 0, errors.New("игрок не найден")
}

const (
	floodChatID  = int64(-100)
	bunkerChatID = int64(-200)
	quizChatID   = int64(-300)
)

func newTestPipeline(store ledger.Store) (*Pipeline, *fakeResolver) {
	resolver := &fakeResolver{users: map[string]int64{
		"alice": 1,
		"bob":   2,
	}}
	gameChats := map[int64]string{
		bunkerChatID: "bunker",
		quizChatID:   "quiz",
	}
	return New(games.DefaultRegistry(), ledger.NewService(store), resolver, gameChats, 3, time.Millisecond), resolver
}

func TestProcessKarma(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	pipe, _ := newTestPipeline(store)

	raw := RawMessage{
		ChatID:        floodChatID,
		MessageID:     42,
		SenderID:      10,
		Text:          "Спасибо!",
		ReplyToUserID: 1,
	}

	res := pipe.Process(ctx, raw)
	if res.Status != StatusApplied {
		t.Fatalf("статус = %s (err=%v), ожидался applied", res.Status, res.Err)
	}
	if res.Category != games.CategoryKarma {
		t.Errorf("категория = %s", res.Category)
	}

	// Сырая дельта 1 × коэффициент кармы 10
	bal, _ := store.Balance(ctx, 1)
	if !bal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("баланс = %s, ожидалось 10", bal)
	}

	// Повторная доставка того же сообщения
	again := pipe.Process(ctx, raw)
	if again.Status != StatusAlreadyApplied {
		t.Fatalf("повторный статус = %s, ожидался already_applied", again.Status)
	}
	bal, _ = store.Balance(ctx, 1)
	if !bal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("баланс после повтора = %s, ожидалось 10", bal)
	}
}

func TestProcessBunkerMultiWinner(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	pipe, _ := newTestPipeline(store)

	res := pipe.Process(ctx, RawMessage{
		ChatID:    bunkerChatID,
		MessageID: 7,
		SenderID:  999, // бот игры
		Text:      "Игра окончена!\nПобедители: @alice, @bob\nНаграда: 30",
	})
	if res.Status != StatusApplied {
		t.Fatalf("статус = %s (err=%v)", res.Status, res.Err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("записей = %d, ожидалось 2", len(res.Entries))
	}

	// 30 × коэффициент бункера 20 = 600 каждому, атомарно
	for _, userID := range []int64{1, 2} {
		bal, _ := store.Balance(ctx, userID)
		if !bal.Equal(decimal.NewFromInt(600)) {
			t.Errorf("баланс участника %d = %s, ожидалось 600", userID, bal)
		}
	}
}

func TestProcessUnknownWinnerRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	pipe, _ := newTestPipeline(store)

	res := pipe.Process(ctx, RawMessage{
		ChatID:    bunkerChatID,
		MessageID: 8,
		Text:      "Игра окончена!\nПобедители: @alice, @stranger\nНаграда: 30",
	})
	if res.Status != StatusRejected {
		t.Fatalf("статус = %s, ожидался rejected", res.Status)
	}

	// Известный победитель тоже не получил очков: партия применяется целиком или никак
	bal, _ := store.Balance(ctx, 1)
	if !bal.IsZero() {
		t.Errorf("баланс alice = %s, ожидался 0", bal)
	}
}

func TestProcessIgnoresNonEvents(t *testing.T) {
	ctx := context.Background()
	pipe, _ := newTestPipeline(ledger.NewMemoryStore())

	res := pipe.Process(ctx, RawMessage{
		ChatID:   floodChatID,
		SenderID: 10,
		Text:     "всем привет",
	})
	if res.Status != StatusIgnored {
		t.Fatalf("статус = %s, ожидался ignored", res.Status)
	}
}

func TestProcessRejectsSelfThanks(t *testing.T) {
	ctx := context.Background()
	pipe, _ := newTestPipeline(ledger.NewMemoryStore())

	res := pipe.Process(ctx, RawMessage{
		ChatID:        floodChatID,
		MessageID:     1,
		SenderID:      10,
		Text:          "спасибо",
		ReplyToUserID: 10,
	})
	if res.Status != StatusRejected {
		t.Fatalf("статус = %s, ожидался rejected", res.Status)
	}
	if res.Err == nil {
		t.Error("для rejected должна быть причина")
	}
}

func TestProcessFractionalAccrualExact(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	pipe, _ := newTestPipeline(store)

	// Три начисления по 0.5 × коэффициент викторины 2 = ровно 3
	for msgID := 1; msgID <= 3; msgID++ {
		res := pipe.Process(ctx, RawMessage{
			ChatID:    quizChatID,
			MessageID: msgID,
			Text:      "Правильный ответ! @alice получает 0.5",
		})
		if res.Status != StatusApplied {
			t.Fatalf("сообщение %d: статус = %s (err=%v)", msgID, res.Status, res.Err)
		}
	}

	bal, _ := store.Balance(ctx, 1)
	if !bal.Equal(decimal.NewFromInt(3)) {
		t.Errorf("баланс = %s, ожидалось ровно 3", bal)
	}
}

func TestBuildEntriesAppliesCoefficient(t *testing.T) {
	events := []games.Event{{
		Game:     "quiz",
		Kind:     games.KindAccrual,
		Player:   games.PlayerRef{UserID: 1},
		RawDelta: decimal.NewFromInt(5),
		Note:     "тест",
	}}

	entries, err := BuildEntries(events)
	if err != nil {
		t.Fatalf("BuildEntries: %v", err)
	}
	if !entries[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("сумма = %s, ожидалось 10 (5 × 2)", entries[0].Amount)
	}
	if entries[0].Type != ledger.TypeGameCredit {
		t.Errorf("тип = %s", entries[0].Type)
	}
}

func TestBuildEntriesUnresolvedPlayer(t *testing.T) {
	_, err := BuildEntries([]games.Event{{
		Game:     "quiz",
		Kind:     games.KindAccrual,
		Player:   games.PlayerRef{Username: "ghost"},
		RawDelta: decimal.NewFromInt(1),
	}})
	if err == nil {
		t.Fatal("неразрешённый игрок должен давать ошибку")
	}
}

func TestFingerprintStability(t *testing.T) {
	a := RawMessage{ChatID: -100, MessageID: 42, Text: "спасибо"}
	b := RawMessage{ChatID: -100, MessageID: 42, Text: "спасибо"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("одинаковые сообщения дали разные отпечатки")
	}

	c := RawMessage{ChatID: -100, MessageID: 43, Text: "спасибо"}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("разные сообщения дали одинаковый отпечаток")
	}

	// Без ID сообщения — откат на содержимое
	d := RawMessage{ChatID: -100, SenderID: 1, Text: "x"}
	e := RawMessage{ChatID: -100, SenderID: 1, Text: "y"}
	if Fingerprint(d) == Fingerprint(e) {
		t.Error("контентные отпечатки совпали для разного текста")
	}
}

func TestAdminFingerprintDistinctKinds(t *testing.T) {
	give := AdminFingerprint("admin-give", -100, 42)
	take := AdminFingerprint("admin-take", -100, 42)
	if give == take {
		t.Error("разные операции над одним сообщением дали одинаковый отпечаток")
	}
}
