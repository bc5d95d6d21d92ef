package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/stretchr/testify/require"
)

// Вставка отзыва выполняет строго эту последовательность в одной
// транзакции: блокировка строки фильма, вставка отзыва, чтение полного
// набора оценок, запись пересчитанной display_rating, фиксация.
func TestCreateReviewRecomputesRatingInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewReviewPostgresStorage(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT external_rating FROM movies WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"external_rating"}).AddRow(6.0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews (movie_id, user_id, rating, comment)`)).
		WithArgs(int64(5), int64(3), 10.0, "great").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(77), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT rating FROM reviews WHERE movie_id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(8.0).AddRow(10.0))
	// avg(8,10)=9, внешняя 6 => (9+6)/2 = 7.5
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE movies SET display_rating = $1 WHERE id = $2`)).
		WithArgs(7.5, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review := domain.Review{MovieID: 5, UserID: 3, Rating: 10, Comment: "great"}
	require.NoError(t, s.CreateReview(context.Background(), &review))
	require.Equal(t, int64(77), review.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewMissingMovieRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewReviewPostgresStorage(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT external_rating FROM movies WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"external_rating"}))
	mock.ExpectRollback()

	review := domain.Review{MovieID: 404, UserID: 3, Rating: 7}
	err := s.CreateReview(context.Background(), &review)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewRecomputesRatingInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewReviewPostgresStorage(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT movie_id FROM reviews WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(77), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT external_rating FROM movies WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"external_rating"}).AddRow(6.0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reviews WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(77), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT rating FROM reviews WHERE movie_id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(8.0))
	// остался один отзыв: avg(8)=8, внешняя 6 => 7.0
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE movies SET display_rating = $1 WHERE id = $2`)).
		WithArgs(7.0, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := s.DeleteReview(context.Background(), 77, 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewForeignOrMissingTouchesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewReviewPostgresStorage(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT movie_id FROM reviews WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(77), int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id"}))
	mock.ExpectRollback()

	affected, err := s.DeleteReview(context.Background(), 77, 999)
	require.NoError(t, err)
	require.Zero(t, affected, "a foreign review must be reported the same as a missing one")
	require.NoError(t, mock.ExpectationsWereMet())
}
