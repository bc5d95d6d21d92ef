package usecase

import (
	"context"
	"testing"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeReviewStorage struct {
	created     []*domain.Review
	affected    int64
	deleteCalls int
	forMovie    []domain.Review
	forUser     []domain.Review
}

func (f *fakeReviewStorage) CreateReview(ctx context.Context, review *domain.Review) error {
	review.ID = int64(len(f.created) + 1)
	f.created = append(f.created, review)
	return nil
}

func (f *fakeReviewStorage) DeleteReview(ctx context.Context, reviewID, requestingUserID int64) (int64, error) {
	f.deleteCalls++
	return f.affected, nil
}

func (f *fakeReviewStorage) ListForMovie(ctx context.Context, movieID int64) ([]domain.Review, error) {
	return f.forMovie, nil
}

func (f *fakeReviewStorage) ListForUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return f.forUser, nil
}

func TestCreateReviewValidatesRatingBounds(t *testing.T) {
	tests := []struct {
		name   string
		review domain.Review
		valid  bool
	}{
		{"rating below zero", domain.Review{MovieID: 1, UserID: 1, Rating: -0.1}, false},
		{"rating above ten", domain.Review{MovieID: 1, UserID: 1, Rating: 10.1}, false},
		{"missing movie id", domain.Review{UserID: 1, Rating: 5}, false},
		{"zero rating is allowed", domain.Review{MovieID: 1, UserID: 1, Rating: 0}, true},
		{"ten is allowed", domain.Review{MovieID: 1, UserID: 1, Rating: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &fakeReviewStorage{}
			uc := NewReviewUseCase(storage, testLogger())

			err := uc.CreateReview(context.Background(), &tt.review)
			if tt.valid {
				require.NoError(t, err)
				require.Len(t, storage.created, 1)
			} else {
				require.ErrorIs(t, err, domain.ErrValidation)
				require.Empty(t, storage.created, "invalid review must be rejected before any write")
			}
		})
	}
}

func TestCreateReviewTrimsComment(t *testing.T) {
	storage := &fakeReviewStorage{}
	uc := NewReviewUseCase(storage, testLogger())

	review := domain.Review{MovieID: 1, UserID: 2, Rating: 8, Comment: "  great movie  "}
	require.NoError(t, uc.CreateReview(context.Background(), &review))
	require.Equal(t, "great movie", review.Comment)
}

func TestDeleteReviewNotFoundAndNotOwnedAreIndistinguishable(t *testing.T) {
	storage := &fakeReviewStorage{affected: 0}
	uc := NewReviewUseCase(storage, testLogger())

	err := uc.DeleteReview(context.Background(), 42, 7)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Equal(t, 1, storage.deleteCalls)
}

func TestDeleteReviewSucceeds(t *testing.T) {
	storage := &fakeReviewStorage{affected: 1}
	uc := NewReviewUseCase(storage, testLogger())

	require.NoError(t, uc.DeleteReview(context.Background(), 42, 7))
}
