// Package games реализует распознавание игровых событий в сообщениях чата.
// models.go описывает входное сообщение, ссылку на игрока и игровое событие.
package games

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category — категория игрового события, присвоенная классификатором.
type Category string

// Категории пяти поддерживаемых игр. Добавление игры = новая категория
// плюс регистрация пары matcher/parser, существующие не редактируются.
const (
	CategoryKarma     Category = "karma"       // «спасибо» в ответ на сообщение
	CategoryBunkerWin Category = "bunker_win"  // итоги партии «Бункер РП»
	CategoryMafiaWin  Category = "mafia_win"   // итоги партии «Мафия»
	CategoryQuizScore Category = "quiz_score"  // начисление за ответ в викторине
	CategoryAnketa    Category = "anketa"      // обновление анкеты участника
)

// Kind — вид игрового события. Определяет коэффициент вместе с именем игры.
type Kind string

const (
	KindKarma         Kind = "karma"
	KindGameEndWin    Kind = "game-end-win"
	KindAccrual       Kind = "accrual"
	KindProfileUpdate Kind = "profile-update"
)

// PlayerRef — ссылка на игрока из текста сообщения.
// Игровые боты называют победителей по @username, поэтому на этапе парсинга
// ID может быть ещё неизвестен; его разрешает пайплайн через реестр участников.
type PlayerRef struct {
	UserID   int64
	Username string
}

// Resolved сообщает, известен ли Telegram ID игрока.
func (p PlayerRef) Resolved() bool { return p.UserID != 0 }

func (p PlayerRef) String() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return fmt.Sprintf("id:%d", p.UserID)
}

// Message — облегчённое представление входящего сообщения для классификатора.
// Классификатор и парсеры работают только с этими полями, без доступа к БД.
type Message struct {
	Text    string
	Game    string    // подсказка из конфигурации: какой игре принадлежит чат ("" — флуд-чат)
	Sender  PlayerRef // автор сообщения
	IsReply bool
	ReplyTo PlayerRef // кому отвечают (заполнен, если IsReply)
}

// Event — структурированное игровое событие, результат работы парсера.
// Не сохраняется напрямую: пайплайн превращает его в записи леджера.
type Event struct {
	Game     string          // имя игры ("karma", "bunker", ...)
	Kind     Kind            // вид события
	Player   PlayerRef       // кому начисляются очки
	RawDelta decimal.Decimal // сырая дельта из сообщения, до коэффициента
	Note     string          // описание для истории операций
}

// ParseError — сообщение распознано как игровое, но его не удалось разобрать.
// Отличается от «не событие» (классификатор вернул "нет категории"):
// такие сообщения пайплайн отклоняет с видимой пользователю причиной.
type ParseError struct {
	Category Category
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("не удалось разобрать сообщение (%s): %s", e.Category, e.Reason)
}
