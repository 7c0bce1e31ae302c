package entity

import "time"

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	Name             string    `gorm:"size:100" json:"name"`
	Email            *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Role             string    `gorm:"size:100" json:"role"`
	Community        string    `gorm:"size:255" json:"community"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`
}

// DisplayName is the name shown next to a user's contributions.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{&User{}, &Submission{}}
}
