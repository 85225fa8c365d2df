package games

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsThanks(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"спасибо", true},
		{"Спасибо", true},
		{"СПАСИБО!!!", true},
		{"благодарю", true},
		{"  спасибо.  ", true},
		{"спасибо большое", false},
		{"не за что", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsThanks(tc.text); got != tc.want {
			t.Errorf("IsThanks(%q) = %v, ожидалось %v", tc.text, got, tc.want)
		}
	}
}

func TestParseKarma(t *testing.T) {
	msg := Message{
		Text:    "спасибо",
		Sender:  PlayerRef{UserID: 10, Username: "sender"},
		IsReply: true,
		ReplyTo: PlayerRef{UserID: 20, Username: "helper"},
	}

	events, err := parseKarma(msg)
	if err != nil {
		t.Fatalf("parseKarma: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("ожидалось 1 событие, получено %d", len(events))
	}
	ev := events[0]
	if ev.Player.UserID != 20 {
		t.Errorf("карма начислена игроку %d, ожидался 20", ev.Player.UserID)
	}
	if !ev.RawDelta.Equal(decimal.NewFromInt(1)) {
		t.Errorf("сырая дельта = %s, ожидалась 1", ev.RawDelta)
	}
	if ev.Game != "karma" || ev.Kind != KindKarma {
		t.Errorf("game/kind = %s/%s", ev.Game, ev.Kind)
	}
}

func TestParseKarmaSelfThanks(t *testing.T) {
	msg := Message{
		Text:    "спасибо",
		Sender:  PlayerRef{UserID: 10},
		IsReply: true,
		ReplyTo: PlayerRef{UserID: 10},
	}

	_, err := parseKarma(msg)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("ожидался *ParseError за самоблагодарность, получено %v", err)
	}
	if pe.Category != CategoryKarma {
		t.Errorf("категория ошибки = %s", pe.Category)
	}
}

func TestParseGameEndMultipleWinners(t *testing.T) {
	msg := Message{
		Text: "Игра окончена!\nПобедители: @alice, @bob и @carol\nНаграда: 30",
		Game: "bunker",
	}

	events, err := parseBunkerWin(msg)
	if err != nil {
		t.Fatalf("parseBunkerWin: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ожидалось 3 события, получено %d", len(events))
	}
	for i, name := range []string{"alice", "bob", "carol"} {
		if events[i].Player.Username != name {
			t.Errorf("события[%d].Player = %s, ожидался %s", i, events[i].Player.Username, name)
		}
		if !events[i].RawDelta.Equal(decimal.NewFromInt(30)) {
			t.Errorf("события[%d].RawDelta = %s, ожидалось 30", i, events[i].RawDelta)
		}
		if events[i].Kind != KindGameEndWin {
			t.Errorf("события[%d].Kind = %s", i, events[i].Kind)
		}
	}
}

func TestParseGameEndDeduplicatesWinners(t *testing.T) {
	msg := Message{
		Text: "Игра завершена. Победители: @alice, @Alice, @alice\nНаграда: 10",
		Game: "mafia",
	}

	events, err := parseMafiaWin(msg)
	if err != nil {
		t.Fatalf("parseMafiaWin: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("повторы не схлопнуты: %d событий", len(events))
	}
}

func TestParseGameEndCommaReward(t *testing.T) {
	msg := Message{
		Text: "Игра окончена! Победители: @alice\nНаграда: 12,5",
		Game: "bunker",
	}

	events, err := parseBunkerWin(msg)
	if err != nil {
		t.Fatalf("parseBunkerWin: %v", err)
	}
	want, _ := decimal.NewFromString("12.5")
	if !events[0].RawDelta.Equal(want) {
		t.Errorf("RawDelta = %s, ожидалось 12.5", events[0].RawDelta)
	}
}

func TestParseGameEndErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"no reward", "Игра окончена! Победители: @alice"},
		{"no mentions in winners", "Игра окончена! Победители: никто\nНаграда: 30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseBunkerWin(Message{Text: tc.text, Game: "bunker"})
			if _, ok := err.(*ParseError); !ok {
				t.Fatalf("ожидался *ParseError, получено %v", err)
			}
		})
	}
}

func TestParseQuizScoreFractional(t *testing.T) {
	msg := Message{
		Text: "Правильный ответ! @dave получает 2.5 очка",
		Game: "quiz",
	}

	events, err := parseQuizScore(msg)
	if err != nil {
		t.Fatalf("parseQuizScore: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("ожидалось 1 событие, получено %d", len(events))
	}
	want, _ := decimal.NewFromString("2.5")
	if !events[0].RawDelta.Equal(want) {
		t.Errorf("RawDelta = %s, ожидалось 2.5", events[0].RawDelta)
	}
	if events[0].Player.Username != "dave" {
		t.Errorf("игрок = %s, ожидался dave", events[0].Player.Username)
	}
}

func TestParseAnketa(t *testing.T) {
	msg := Message{
		Text:   "#анкета\nИмя: Ева",
		Sender: PlayerRef{UserID: 7, Username: "eva"},
	}

	events, err := parseAnketa(msg)
	if err != nil {
		t.Fatalf("parseAnketa: %v", err)
	}
	if events[0].Player.UserID != 7 {
		t.Errorf("бонус начислен игроку %d, ожидался 7 (автор)", events[0].Player.UserID)
	}
	if !events[0].RawDelta.Equal(decimal.NewFromInt(5)) {
		t.Errorf("RawDelta = %s, ожидалось 5", events[0].RawDelta)
	}
}

func TestCoefficients(t *testing.T) {
	cases := []struct {
		game string
		kind Kind
		want int64
	}{
		{"karma", KindKarma, 10},
		{"bunker", KindGameEndWin, 20},
		{"mafia", KindGameEndWin, 15},
		{"quiz", KindAccrual, 2},
		{"anketa", KindProfileUpdate, 1},
	}

	for _, tc := range cases {
		c, ok := Coefficient(tc.game, tc.kind)
		if !ok {
			t.Errorf("коэффициент для %s/%s не найден", tc.game, tc.kind)
			continue
		}
		if !c.Equal(decimal.NewFromInt(tc.want)) {
			t.Errorf("коэффициент %s/%s = %s, ожидалось %d", tc.game, tc.kind, c, tc.want)
		}
	}

	if _, ok := Coefficient("casino", KindAccrual); ok {
		t.Error("найден коэффициент для незарегистрированной игры")
	}
}
