// Package games — registry.go содержит реестр игр.
// Вместо разбросанных по коду условий каждая игра регистрирует пару
// matcher/parser один раз при старте. Классификация тотальна: любой текст
// либо попадает ровно в одну категорию, либо игнорируется.
package games

// Game связывает категорию с функциями распознавания и разбора.
type Game struct {
	Category Category
	// Match решает, относится ли сообщение к этой игре.
	// Чистая функция: только текст и лёгкий контекст, никаких побочных эффектов.
	Match func(m Message) bool
	// Parse извлекает события из уже классифицированного сообщения.
	// Ошибки разбора — проблемы данных, возвращаются как *ParseError.
	Parse func(m Message) ([]Event, error)
}

// Registry хранит зарегистрированные игры в порядке регистрации.
type Registry struct {
	games []Game
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register добавляет игру в реестр. Вызывается один раз при сборке приложения.
func (r *Registry) Register(g Game) {
	r.games = append(r.games, g)
}

// Classify возвращает категорию сообщения или ok=false, если ни одна игра
// его не признала. Никогда не возвращает ошибку: непонятный текст — не событие.
func (r *Registry) Classify(m Message) (Category, bool) {
	for _, g := range r.games {
		if g.Match(m) {
			return g.Category, true
		}
	}
	return "", false
}

// Parse разбирает сообщение известной категории в события.
func (r *Registry) Parse(m Message, c Category) ([]Event, error) {
	for _, g := range r.games {
		if g.Category == c {
			return g.Parse(m)
		}
	}
	return nil, &ParseError{Category: c, Reason: "категория не зарегистрирована"}
}

// DefaultRegistry собирает реестр пяти поддерживаемых игр.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Game{Category: CategoryKarma, Match: matchKarma, Parse: parseKarma})
	r.Register(Game{Category: CategoryBunkerWin, Match: matchBunkerWin, Parse: parseBunkerWin})
	r.Register(Game{Category: CategoryMafiaWin, Match: matchMafiaWin, Parse: parseMafiaWin})
	r.Register(Game{Category: CategoryQuizScore, Match: matchQuizScore, Parse: parseQuizScore})
	r.Register(Game{Category: CategoryAnketa, Match: matchAnketa, Parse: parseAnketa})
	return r
}
