package domain

// User представляет модель пользователя в системе.
// Соответствует таблице users в базе данных.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password_hash"`
}

func (User) TableName() string {
	return "users"
}
