package domain

import "time"

// Review представляет отзыв пользователя на фильм.
// Отзыв принадлежит ровно одному фильму и одному автору.
type Review struct {
	ID        int64     `json:"id" db:"id"`
	MovieID   int64     `json:"movie_id" db:"movie_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    float64   `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UserName заполняется джойном при выдаче списка отзывов.
	UserName string `json:"user_name,omitempty" db:"user_name"`

	// MovieTitle заполняется джойном в истории отзывов пользователя.
	MovieTitle string `json:"movie_title,omitempty" db:"movie_title"`
}
