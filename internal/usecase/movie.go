package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/CatalogApp/internal/domain"
)

// MovieFetcher определяет интерфейс внешнего шлюза метаданных (OMDb API).
// Шлюз нормализует ответ внешнего сервиса во внутреннюю модель Movie.
type MovieFetcher interface {
	// FetchByTitle возвращает фильм из внешнего API, domain.ErrNotFound,
	// если внешний сервис его не знает, или domain.ErrUpstream при сбое.
	FetchByTitle(ctx context.Context, title string) (*domain.Movie, error)
}

// PosterStorage определяет интерфейс файлового хранилища постеров
// (S3-совместимого). Возвращает публичный URL загруженного объекта.
type PosterStorage interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// MovieUseCase определяет бизнес-логику каталога фильмов.
type MovieUseCase interface {
	// GetOrFetchMovieByTitle реализует cache-or-fetch: ищет фильм по
	// названию в локальном хранилище; при промахе обращается к внешнему
	// шлюзу, сохраняет результат, рассылает событие new-movie и
	// возвращает фильм. Однажды сохранённый фильм повторно не
	// запрашивается — кеш без TTL и инвалидации.
	GetOrFetchMovieByTitle(ctx context.Context, title string) (*domain.Movie, error)

	// ListMovies возвращает страницу последних фильмов, суженную фильтром.
	ListMovies(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error)

	// GetMovieByID возвращает фильм или domain.ErrNotFound.
	GetMovieByID(ctx context.Context, id int64) (*domain.Movie, error)

	// CreateMovie валидирует и сохраняет фильм, добавленный вручную,
	// и рассылает событие new-movie.
	CreateMovie(ctx context.Context, movie *domain.Movie) error

	// CreateMovies вставляет пачку фильмов атомарно (всё или ничего).
	CreateMovies(ctx context.Context, movies []domain.Movie) ([]domain.Movie, error)
}

// ReviewUseCase определяет бизнес-логику отзывов.
type ReviewUseCase interface {
	// CreateReview валидирует границы оценки (0–10) до любой записи
	// и атомарно (вместе с пересчётом оценки фильма) сохраняет отзыв.
	CreateReview(ctx context.Context, review *domain.Review) error

	// DeleteReview удаляет отзыв, только если requestingUserID — автор.
	// «Не найден» и «чужой» дают одинаковый domain.ErrNotFound.
	DeleteReview(ctx context.Context, reviewID, requestingUserID int64) error

	// ListMovieReviews возвращает отзывы фильма, новые первыми.
	ListMovieReviews(ctx context.Context, movieID int64) ([]domain.Review, error)

	// ListUserReviews возвращает историю отзывов пользователя.
	ListUserReviews(ctx context.Context, userID int64) ([]domain.Review, error)
}

// UserUseCase определяет бизнес-логику учётных записей.
type UserUseCase interface {
	// Register создаёт пользователя; дубликат email — domain.ErrConflict.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Login проверяет учётные данные; любое несовпадение —
	// domain.ErrUnauthorized без уточнения причины.
	Login(ctx context.Context, email, password string) (*domain.User, error)

	GetProfile(ctx context.Context, userID int64) (*domain.User, error)

	// UpdateProfile меняет имя и email; смена пароля требует верный
	// старый пароль.
	UpdateProfile(ctx context.Context, userID int64, input ProfileUpdate) (*domain.User, error)

	// DeleteAccount удаляет учётную запись пользователя.
	DeleteAccount(ctx context.Context, userID int64) error
}

// ProfileUpdate описывает параметры редактирования профиля.
// Пустые поля остаются без изменений.
type ProfileUpdate struct {
	Name        string
	Email       string
	OldPassword string
	NewPassword string
}
