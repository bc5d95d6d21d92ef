package domain

import (
	"strings"
)

// GenreDelimiter — разделитель, которым список жанров сериализуется
// в одну текстовую колонку БД. Жанр не может содержать этот символ.
const GenreDelimiter = "|"

// Movie представляет модель фильма в системе,
// соответствует таблице movies в бд.
// ExternalRating — оценка, полученная один раз от внешнего API при обогащении;
// после вставки она не меняется. DisplayRating пересчитывается хранилищем
// при каждом изменении набора отзывов и никогда не выставляется напрямую.
type Movie struct {
	ID             int64    `json:"id" db:"id"`
	Title          string   `json:"title" db:"title"`
	Year           int      `json:"year" db:"year"`
	Director       string   `json:"director" db:"director"`
	Genres         []string `json:"genres" db:"-"`
	GenresRaw      string   `json:"-" db:"genres"`
	DisplayRating  float64  `json:"display_rating" db:"display_rating"`
	ExternalRating float64  `json:"external_rating" db:"external_rating"`
	Synopsis       string   `json:"synopsis" db:"synopsis"`
	PosterURL      string   `json:"poster_url" db:"poster_url"`
}

// JoinGenres сериализует список жанров в строку для хранения.
func JoinGenres(genres []string) string {
	return strings.Join(genres, GenreDelimiter)
}

// SplitGenres материализует сохранённую строку жанров обратно в список.
// Старые записи могли использовать запятую как разделитель, поэтому
// принимаем оба варианта; пустые элементы отбрасываются.
func SplitGenres(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ','
	})
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// MaterializeGenres заполняет Genres из сырой колонки после чтения из бд.
func (m *Movie) MaterializeGenres() {
	m.Genres = SplitGenres(m.GenresRaw)
}

// MovieFilter описывает параметры фильтрации списка фильмов.
// Фильтры сужают уже выбранную страницу последних фильмов,
// а не расширяют её (см. ListRecent в хранилище).
type MovieFilter struct {
	Query string
	Genre string
	Year  int
}

// Matches сообщает, проходит ли фильм фильтр. Сопоставление по тексту и
// жанру регистронезависимое, по подстроке; год сравнивается точно.
func (f MovieFilter) Matches(m *Movie) bool {
	if f.Query != "" {
		term := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(m.Title), term) &&
			!strings.Contains(strings.ToLower(m.Director), term) {
			return false
		}
	}
	if f.Genre != "" {
		want := strings.ToLower(strings.TrimSpace(f.Genre))
		found := false
		for _, g := range m.Genres {
			if strings.Contains(strings.ToLower(g), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Year != 0 && m.Year != f.Year {
		return false
	}
	return true
}
