package models

import (
	"time"

	"github.com/google/uuid"
)

// Said, Action and Emotion are owned by the monologue subsystem; the account
// API only reads them to embed nested representations. Their write paths live
// elsewhere.

type Said struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	Text      string    `gorm:"column:text;not null"`
	SaidAt    time.Time `gorm:"column:said_at;autoCreateTime"`
}

type Action struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null"`
}

type Emotion struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null"`
}
