package model

import (
	"time"

	"github.com/google/uuid"
)

// Note rows are hard-deleted: the product promises that deleting a note
// (or the whole archive) is immediate and non-recoverable.
type Note struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title      string    `gorm:"type:varchar(255);not null"`
	Text       string    `gorm:"type:text"`
	IsArchived bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}
