package ports

import (
	"context"

	"github.com/GoArmGo/CatalogApp/internal/domain"
)

// MovieStorage определяет методы для взаимодействия с хранилищем фильмов.
// Хранилище — единственный писатель display_rating: пересчёт оценки
// происходит внутри CreateReview/DeleteReview в одной транзакции
// с блокировкой строки фильма.
type MovieStorage interface {
	// ListRecent возвращает страницу последних фильмов (новые первыми)
	// и затем сужает её фильтром в памяти. Фильм за пределами страницы
	// в выдачу не попадёт, даже если подходит под фильтр.
	ListRecent(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error)

	// GetByID возвращает фильм с материализованными жанрами
	// или domain.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)

	// GetByTitle ищет фильм по точному названию без учёта регистра.
	GetByTitle(ctx context.Context, title string) (*domain.Movie, error)

	// Insert присваивает id, сохраняет жанры одной строкой и сажает
	// display_rating равным external_rating.
	Insert(ctx context.Context, movie *domain.Movie) error

	// InsertBatch вставляет список фильмов в одной транзакции:
	// при любой ошибке откатывается вся пачка.
	InsertBatch(ctx context.Context, movies []domain.Movie) ([]domain.Movie, error)
}

// ReviewStorage определяет методы для работы с отзывами.
type ReviewStorage interface {
	// CreateReview вставляет отзыв и атомарно пересчитывает
	// display_rating фильма.
	CreateReview(ctx context.Context, review *domain.Review) error

	// DeleteReview удаляет отзыв, только если requestingUserID — его автор.
	// Возвращает число затронутых строк: 0 значит «не найден или чужой»
	// (исходы намеренно не различаются). При удалении пересчитывает
	// оценку фильма.
	DeleteReview(ctx context.Context, reviewID, requestingUserID int64) (int64, error)

	// ListForMovie возвращает отзывы фильма с именем автора, новые первыми.
	ListForMovie(ctx context.Context, movieID int64) ([]domain.Review, error)

	// ListForUser возвращает отзывы пользователя с названием фильма,
	// новые первыми.
	ListForUser(ctx context.Context, userID int64) ([]domain.Review, error)
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
type UserStorage interface {
	// CreateUser возвращает domain.ErrConflict при дубликате email.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
}
