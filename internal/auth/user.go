package auth

import "time"

// User roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an operator account. PasswordHash is a bcrypt hash and never
// leaves the package.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	DisplayName  string    `json:"display_name" gorm:"size:100"`
	Email        string    `json:"email" gorm:"size:200"`
	Role         string    `json:"role" gorm:"size:20;not null;default:staff"`
	Status       string    `json:"status" gorm:"size:20;not null;default:active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
