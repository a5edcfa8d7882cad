package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:30"  json:"username"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Book struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null;size:200;index"  json:"title"`
	Author      string    `gorm:"not null;size:100;index"  json:"author"`
	Genre       string    `gorm:"not null;size:50;default:'Uncategorized'" json:"genre"`
	Description string    `gorm:"size:2000"                json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Review carries a composite unique index over (book_id, user_id): a user
// reviews a given book at most once. The index lives in the store so that
// two concurrent creates cannot both slip past the application-level check.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                    json:"id"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_reviews_book_user"  json:"bookId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_book_user"  json:"userId"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"       json:"rating"`
	Comment   string    `gorm:"size:1000"                                   json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}
