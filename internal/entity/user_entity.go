package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id        uuid.UUID
	Login     string
	Username  string
	Password  string
	CreatedAt time.Time
}
