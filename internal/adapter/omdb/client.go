package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GoArmGo/CatalogApp/internal/config"
	"github.com/GoArmGo/CatalogApp/internal/domain"
)

// OMDbAPIClient представляет клиент для взаимодействия с OMDb API.
// Одна попытка на запрос: политика повторов не предусмотрена,
// зависший вызов ограничивается таймаутом HTTP-клиента.
type OMDbAPIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOMDbAPIClient создает новый экземпляр OMDbAPIClient.
func NewOMDbAPIClient(cfg *config.Config) *OMDbAPIClient {
	return &OMDbAPIClient{
		httpClient: &http.Client{Timeout: cfg.OMDbTimeout},
		baseURL:    cfg.OMDbBaseURL,
		apiKey:     cfg.OMDbAPIKey,
	}
}

// FetchByTitle ищет фильм во внешнем API и нормализует ответ во внутреннюю
// модель. «Фильм не найден» — это domain.ErrNotFound; транспортные ошибки,
// неожиданные статусы и битый JSON — domain.ErrUpstream.
func (c *OMDbAPIClient) FetchByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)

	endpoint := fmt.Sprintf("%s/?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка создания HTTP-запроса: %v", domain.ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка выполнения HTTP-запроса к OMDb: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: OMDb API вернул статус %d", domain.ErrUpstream, resp.StatusCode)
	}

	var omdbMovie OMDbMovieResponse
	if err := json.NewDecoder(resp.Body).Decode(&omdbMovie); err != nil {
		return nil, fmt.Errorf("%w: ошибка декодирования JSON ответа OMDb: %v", domain.ErrUpstream, err)
	}

	if omdbMovie.Response == "False" {
		return nil, domain.ErrNotFound
	}

	return c.mapOMDbMovieToDomain(&omdbMovie), nil
}

// mapOMDbMovieToDomain преобразует OMDbMovieResponse в domain.Movie.
// Непарсящиеся год и оценка становятся нулём — документированная
// условность «0 значит отсутствует».
func (c *OMDbAPIClient) mapOMDbMovieToDomain(omdbMovie *OMDbMovieResponse) *domain.Movie {
	year, err := strconv.Atoi(yearPrefix(omdbMovie.Year))
	if err != nil {
		year = 0
	}

	rating, err := strconv.ParseFloat(omdbMovie.ImdbRating, 64)
	if err != nil {
		rating = 0
	}

	poster := omdbMovie.Poster
	if poster == "N/A" {
		poster = ""
	}

	return &domain.Movie{
		Title:          omdbMovie.Title,
		Year:           year,
		Director:       omdbMovie.Director,
		Genres:         domain.SplitGenres(omdbMovie.Genre),
		ExternalRating: rating,
		DisplayRating:  rating,
		Synopsis:       omdbMovie.Plot,
		PosterURL:      poster,
	}
}

// yearPrefix обрезает диапазоны вида "2008–2013" (сериалы) до первого года.
func yearPrefix(raw string) string {
	for i, r := range raw {
		if r < '0' || r > '9' {
			return raw[:i]
		}
	}
	return raw
}
