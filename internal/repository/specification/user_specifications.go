package specification

import "gorm.io/gorm"

// ByLogin filters users by their unique login
type ByLogin struct {
	Login string
}

func (s ByLogin) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("login = ?", s.Login)
}
