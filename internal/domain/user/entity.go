package user

import (
	"time"

	"github.com/google/uuid"
)

// Persona identifies the response-generation behavior of an automated user.
// Dispatch is keyed by this stable identifier, never by display name.
type Persona string

const (
	PersonaNone       Persona = ""
	PersonaDirect     Persona = "direct"
	PersonaSupervisor Persona = "supervisor"
)

// User represents the users table
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAI         bool      `json:"isAI"`
	Persona      Persona   `json:"-"`
	Status       string    `gorm:"default:offline" json:"status"`
	LastActive   time.Time `json:"lastActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

// ValidStatus reports whether s is one of the supported presence states.
func ValidStatus(s string) bool {
	switch s {
	case "online", "away", "dnd", "offline":
		return true
	}
	return false
}
