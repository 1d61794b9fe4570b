package models

import "time"

// User represents an account holder. Password, tokens and avatar never
// leave the service in JSON form.
type User struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string      `json:"name" gorm:"type:varchar(255);not null"`
	Email     string      `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string      `json:"-" gorm:"type:varchar(255);not null"`
	Age       int         `json:"age" gorm:"not null;default:0"`
	Tokens    []UserToken `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Avatar    []byte      `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserToken is one active session token. Rows are ordered by ID, which
// follows issuance order.
type UserToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);index;not null"`
	Token     string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}
