package games

import "testing"

func TestClassifyKnownMessages(t *testing.T) {
	r := DefaultRegistry()

	cases := []struct {
		name string
		msg  Message
		want Category
	}{
		{
			name: "karma reply",
			msg: Message{
				Text:    "Спасибо!",
				Sender:  PlayerRef{UserID: 1},
				IsReply: true,
				ReplyTo: PlayerRef{UserID: 2},
			},
			want: CategoryKarma,
		},
		{
			name: "bunker game end",
			msg: Message{
				Text: "Игра окончена! Победители: @alice, @bob\nНаграда: 30",
				Game: "bunker",
			},
			want: CategoryBunkerWin,
		},
		{
			name: "mafia game end",
			msg: Message{
				Text: "Игра завершена. Победители: @carol\nНаграда: 10",
				Game: "mafia",
			},
			want: CategoryMafiaWin,
		},
		{
			name: "quiz accrual",
			msg: Message{
				Text: "Правильный ответ! @dave получает 2.5 очка",
				Game: "quiz",
			},
			want: CategoryQuizScore,
		},
		{
			name: "anketa tag",
			msg: Message{
				Text:   "#анкета Имя: Ева",
				Sender: PlayerRef{UserID: 5},
			},
			want: CategoryAnketa,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := r.Classify(tc.msg)
			if !ok {
				t.Fatalf("сообщение не классифицировано, ожидалась категория %s", tc.want)
			}
			if got != tc.want {
				t.Errorf("категория = %s, ожидалась %s", got, tc.want)
			}
		})
	}
}

func TestClassifyIgnoresNoise(t *testing.T) {
	r := DefaultRegistry()

	cases := []struct {
		name string
		msg  Message
	}{
		{"plain chatter", Message{Text: "всем привет, как дела?", Sender: PlayerRef{UserID: 1}}},
		{"thanks without reply", Message{Text: "спасибо", Sender: PlayerRef{UserID: 1}}},
		{"thanks in game chat", Message{Text: "спасибо", Game: "bunker", IsReply: true, ReplyTo: PlayerRef{UserID: 2}}},
		{"bunker text in flood chat", Message{Text: "Игра окончена! Победители: @alice\nНаграда: 30"}},
		{"game end without winners line", Message{Text: "Игра окончена! Все проиграли.", Game: "bunker"}},
		{"quiz text in wrong chat", Message{Text: "Правильный ответ! @dave получает 2", Game: "mafia"}},
		{"anketa as reply", Message{Text: "#анкета", IsReply: true, Sender: PlayerRef{UserID: 1}, ReplyTo: PlayerRef{UserID: 2}}},
		{"anketa in game chat", Message{Text: "#анкета", Game: "quiz", Sender: PlayerRef{UserID: 1}}},
		{"empty text", Message{}},
		{"emoji only", Message{Text: "🎉🎉🎉"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got, ok := r.Classify(tc.msg); ok {
				t.Errorf("сообщение ошибочно классифицировано как %s", got)
			}
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	r.Register(Game{Category: "first", Match: func(Message) bool { return true }})
	r.Register(Game{Category: "second", Match: func(Message) bool { return true }})

	got, ok := r.Classify(Message{Text: "x"})
	if !ok || got != "first" {
		t.Fatalf("Classify = %s, %v; ожидалась first, true", got, ok)
	}
}

func TestParseUnknownCategory(t *testing.T) {
	r := NewRegistry()

	_, err := r.Parse(Message{Text: "x"}, "nonexistent")
	if err == nil {
		t.Fatal("ожидалась ошибка для незарегистрированной категории")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("ожидался *ParseError, получено %T", err)
	}
}
