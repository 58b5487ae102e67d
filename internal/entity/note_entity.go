package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Title      string
	Text       string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
