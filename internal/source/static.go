package source

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// Candidate sources consumed by the catalog ingestors.
type (
	MovieSource     = Source[domain.MovieCandidate]
	PersonSource    = Source[domain.PersonCandidate]
	PrincipalSource = Source[domain.PrincipalCandidate]
	TMDbSource      = Source[domain.TMDbCandidate]
	UserSource      = Source[domain.Registration]
)

//go:embed countries.json
var countriesJSON []byte

type countryEntry struct {
	ISO    string `json:"iso_3166_1"`
	NameEn string `json:"english_name"`
	NameRu string `json:"russian_name"`
}

// Static serves the fixed reference lists the catalog is seeded with.
type Static struct{}

// MovieTypes returns the IMDb title types.
func (Static) MovieTypes() []domain.MovieType {
	return []domain.MovieType{
		{IMDbName: "movie", NameEn: "Movie", NameRu: "Фильм"},
		{IMDbName: "short", NameEn: "Short Movie", NameRu: "Короткометражка"},
		{IMDbName: "tvEpisode", NameEn: "TV Episode", NameRu: "Телевизионный эпизод"},
		{IMDbName: "tvMiniSeries", NameEn: "TV Mini Series", NameRu: "Телевизионный мини-сериал"},
		{IMDbName: "tvMovie", NameEn: "TV Movie", NameRu: "Телевизионный фильм"},
		{IMDbName: "tvSeries", NameEn: "TV Series", NameRu: "Телевизионный сериал"},
		{IMDbName: "tvShort", NameEn: "TV Short", NameRu: "Телевизионная короткометражка"},
		{IMDbName: "tvSpecial", NameEn: "TV Special", NameRu: "Телевизионный спецвыпуск"},
		{IMDbName: "video", NameEn: "Video", NameRu: "Видео"},
		{IMDbName: "videoGame", NameEn: "Video Game", NameRu: "Видео-игра"},
	}
}

// Genres returns IMDb genres with their TMDb counterparts where one exists.
func (Static) Genres() []domain.Genre {
	g := func(en, slug, tmdb, ru string) domain.Genre {
		genre := domain.Genre{NameEn: en, NameRu: ru, Slug: slug}
		if tmdb != "" {
			genre.TMDbName = &tmdb
		}
		return genre
	}
	return []domain.Genre{
		g("Short", "short", "", "Короткий фильм"),
		g("Talk-Show", "talk-show", "", "Разговорное шоу"),
		g("Adult", "adult", "", "Для взрослых"),
		g("Game-Show", "game-show", "", "Игровое шоу"),
		g("Reality-TV", "reality-tv", "", "Реалити шоу"),
		g("News", "news", "", "Новости"),
		g("Horror", "horror", "Horror", "Ужасы"),
		g("Musical", "musical", "", "Мьюзикл"),
		g("Sport", "sport", "", "Спорт"),
		g("Documentary", "documentary", "Documentary", "Документальное кино"),
		g("Music", "music", "Music", "Музыкальный фильм"),
		g("Western", "western", "Western", "Вестерн"),
		g("Comedy", "comedy", "Comedy", "Комедия"),
		g("Animation", "animation", "Animation", "Мультфильм"),
		g("Family", "family", "Family", "Семейное кино"),
		g("Fantasy", "fantasy", "Fantasy", "Фэнтези"),
		g("War", "war", "War", "Военный"),
		g("Thriller", "thriller", "Thriller", "Триллер"),
		g("Mystery", "mystery", "Mystery", "Мистика"),
		g("Romance", "romance", "Romance", "Романтика"),
		g("Sci-Fi", "sci-fi", "Science Fiction", "Фантастика"),
		g("Biography", "biography", "", "Биография"),
		g("History", "history", "History", "Исторический"),
		g("Adventure", "adventure", "Adventure", "Приключения"),
		g("Action", "action", "Action", "Экшен"),
		g("Crime", "crime", "Crime", "Криминал"),
		g("Drama", "drama", "Drama", "Драма"),
	}
}

// Professions returns IMDb primary professions and principal categories.
func (Static) Professions() []domain.Profession {
	rows := [][3]string{
		{"self", "Self", "В роли себя"},
		{"editor", "Editor", "Монтажер"},
		{"miscellaneous", "Miscellaneous", "Различные работы"},
		{"choreographer", "Choreographer", "Хореограф"},
		{"director", "Director", "Режиссер"},
		{"set_decorator", "Set decorator", "Декоратор"},
		{"assistant", "Assistant", "Ассистент"},
		{"archive_sound", "Archive sound", "Специалист по архивным звукозаписям"},
		{"casting_director", "Casting director", "Кастинг-директор"},
		{"talent_agent", "Talent agent", "Агент по поиску талантов"},
		{"production_manager", "Production manager", "Руководитель производства"},
		{"production_designer", "Production designer", "Художник-постановщик"},
		{"art_department", "Art department", "Художественное оформление"},
		{"podcaster", "Podcaster", "Подкастер"},
		{"production_department", "Production department", "Производство"},
		{"make_up_department", "Make Up department", "Художник-гример"},
		{"executive", "Executive", "Генеральный продюсер"},
		{"costume_designer", "Costume designer", "Художник по костюмам"},
		{"casting_department", "Casting department", "Кастинг"},
		{"special_effects", "Special effects", "Спецэффекты"},
		{"transportation_department", "Transportation department", "Транспорт"},
		{"actress", "Actress", "Актриса"},
		{"composer", "Composer", "Композитор"},
		{"animation_department", "Animation department", "Аниматор"},
		{"legal", "Legal", "Юрист"},
		{"art_director", "Art director", "Арт-директор"},
		{"editorial_department", "Editorial department", "Монтаж"},
		{"music_department", "Music department", "Музыкальный отдел"},
		{"writer", "Writer", "Сценарист"},
		{"manager", "Manager", "Менеджер"},
		{"visual_effects", "Visual effects", "Визуальные эффекты"},
		{"stunts", "Stunts", "Каскадер"},
		{"soundtrack", "Soundtrack", "Саундтрек"},
		{"script_department", "Script department", "Отдел сценария"},
		{"location_management", "Location management", "Менеджер по площадке"},
		{"cinematographer", "Cinematographer", "Оператор-постановщик"},
		{"music_artist", "Music artist", "Музыкант"},
		{"archive_footage", "Archive footage", "Специалист по архивным видеозаписям"},
		{"actor", "Actor", "Актер"},
		{"producer", "Producer", "Продюсер"},
		{"camera_department", "Camera department", "Операторская группа"},
		{"sound_department", "Sound department", "Звукооператор"},
		{"publicist", "Publicist", "Публицист"},
		{"assistant_director", "Assistant director", "Второй режиссер"},
		{"accountant", "Accountant", "Бухгалтер"},
		{"costume_department", "Costume department", "Художник по костюмам"},
		{"electrical_department", "Electrical department", "Электротехник"},
	}

	out := make([]domain.Profession, len(rows))
	for i, r := range rows {
		out[i] = domain.Profession{IMDbName: r[0], NameEn: r[1], NameRu: r[2]}
	}
	return out
}

// Countries decodes the embedded ISO 3166-1 country list.
func (Static) Countries() ([]domain.Country, error) {
	var entries []countryEntry
	if err := json.Unmarshal(countriesJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	out := make([]domain.Country, 0, len(entries))
	for _, e := range entries {
		c := domain.Country{ISO: e.ISO, NameEn: e.NameEn}
		if e.NameRu != "" {
			ru := e.NameRu
			c.NameRu = &ru
		}
		out = append(out, c)
	}
	return out, nil
}
