package auth

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	// LinkVersion is bumped each time an emailed link is redeemed, which
	// invalidates every link issued before.
	LinkVersion  int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}
