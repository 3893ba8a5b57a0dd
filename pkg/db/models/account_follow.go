package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountFollow is one directed edge of the follow graph. The relation is
// asymmetric: an (A, B) row says nothing about (B, A). The composite primary
// key keeps each pair unique.
type AccountFollow struct {
	FollowerID uuid.UUID `gorm:"column:follower_id;type:uuid;primaryKey"`
	FolloweeID uuid.UUID `gorm:"column:followee_id;type:uuid;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AccountFollow) TableName() string {
	return "account_follows"
}
