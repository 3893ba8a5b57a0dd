package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultOriginImage is the placeholder shown until an account uploads an icon source.
const DefaultOriginImage = "static/photos/fish_jellyfish.png"

// Account represents the canonical account entity. The id is assigned once at
// creation and never reused; username doubles as the login identifier.
type Account struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ScreenName   string     `gorm:"column:screen_name;size:50;not null"`
	Username     string     `gorm:"column:username;size:31;not null;uniqueIndex"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	Bio          string     `gorm:"column:bio;size:150;not null;default:''"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsStaff      bool       `gorm:"column:is_staff;not null;default:false"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	IsSuperuser  bool       `gorm:"column:is_superuser;not null;default:false"`
	DateJoined   time.Time  `gorm:"column:date_joined;autoCreateTime"`
	OriginImage  string     `gorm:"column:origin_image;not null;default:'static/photos/fish_jellyfish.png'"`
	ActionID     *uuid.UUID `gorm:"column:action_id;type:uuid"`
	EmotionID    *uuid.UUID `gorm:"column:emotion_id;type:uuid"`

	Action  *Action  `gorm:"foreignKey:ActionID"`
	Emotion *Emotion `gorm:"foreignKey:EmotionID"`
	Saids   []Said   `gorm:"foreignKey:AccountID"`
}
