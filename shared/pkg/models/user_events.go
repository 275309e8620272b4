package models

import (
	"time"

	"github.com/google/uuid"
)

const EventUserCreated = "auth.user.created"

type UserCreatedPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

func NewUserCreatedEvent(p UserCreatedPayload) Event[UserCreatedPayload] {
	return Event[UserCreatedPayload]{
		ID:      uuid.NewString(),
		Type:    EventUserCreated,
		Version: 1,
		Time:    time.Now(),
		Payload: p,
	}
}
