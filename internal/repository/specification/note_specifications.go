package specification

import "gorm.io/gorm"

// ArchivedIs filters notes by archive state
type ArchivedIs struct {
	Value bool
}

func (s ArchivedIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_archived = ?", s.Value)
}
