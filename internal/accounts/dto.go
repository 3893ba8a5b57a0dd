package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/monologue-app/monologue-backend/pkg/db/models"
)

// AccountDTO is the wire shape for an account. Credentials are deliberately
// absent: there is no path through this type that can read or set a password.
type AccountDTO struct {
	ID                uuid.UUID   `json:"id"`
	ScreenName        string      `json:"screen_name"`
	Username          string      `json:"username"`
	Email             string      `json:"email"`
	Bio               string      `json:"bio"`
	Saids             []SaidDTO   `json:"saids"`
	Action            *ActionDTO  `json:"action"`
	Emotion           *EmotionDTO `json:"emotion"`
	FollowingAccounts []uuid.UUID `json:"following_accounts"`
	Followers         []uuid.UUID `json:"followers"`
}

// AccountRefDTO is the nested summary used when listing the follow graph.
type AccountRefDTO struct {
	ID         uuid.UUID `json:"id"`
	ScreenName string    `json:"screen_name"`
	Username   string    `json:"username"`
}

type SaidDTO struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	SaidAt time.Time `json:"said_at"`
}

type ActionDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type EmotionDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreateAccountInput carries the fields accepted when registering an account.
// IsStaff/IsSuperuser are only honored by the privileged creation path.
type CreateAccountInput struct {
	ScreenName  string  `json:"screen_name" validate:"required,max=50"`
	Username    string  `json:"username" validate:"required,alphanum,max=31"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	Bio         string  `json:"bio" validate:"max=150"`
	OriginImage string  `json:"origin_image,omitempty"`
	IsStaff     *bool   `json:"is_staff,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// UpdateAccountInput is the full-update payload. Server-assigned fields (id,
// date_joined) and credentials are not updatable through this path.
type UpdateAccountInput struct {
	ScreenName  string `json:"screen_name" validate:"required,max=50"`
	Username    string `json:"username" validate:"required,alphanum,max=31"`
	Email       string `json:"email" validate:"required,email"`
	Bio         string `json:"bio" validate:"max=150"`
	OriginImage string `json:"origin_image,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// PatchAccountInput is the partial-update payload; nil fields are untouched.
type PatchAccountInput struct {
	ScreenName  *string `json:"screen_name,omitempty" validate:"omitempty,max=50"`
	Username    *string `json:"username,omitempty" validate:"omitempty,alphanum,max=31"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=150"`
	OriginImage *string `json:"origin_image,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// EmailInput is the payload for sending mail to an account.
type EmailInput struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
	From    string `json:"from,omitempty" validate:"omitempty,email"`
}

// ListResult wraps a page of accounts plus the cursor for the next page.
type ListResult struct {
	Items  []AccountDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// FromModel maps a persisted account plus its follow-edge id sets to the wire
// shape.
func FromModel(a *models.Account, following, followers []uuid.UUID) *AccountDTO {
	if a == nil {
		return nil
	}

	saids := make([]SaidDTO, 0, len(a.Saids))
	for _, said := range a.Saids {
		saids = append(saids, SaidDTO{ID: said.ID, Text: said.Text, SaidAt: said.SaidAt})
	}

	dto := &AccountDTO{
		ID:                a.ID,
		ScreenName:        a.ScreenName,
		Username:          a.Username,
		Email:             a.Email,
		Bio:               a.Bio,
		Saids:             saids,
		FollowingAccounts: emptyIfNil(following),
		Followers:         emptyIfNil(followers),
	}
	if a.Action != nil {
		dto.Action = &ActionDTO{ID: a.Action.ID, Name: a.Action.Name}
	}
	if a.Emotion != nil {
		dto.Emotion = &EmotionDTO{ID: a.Emotion.ID, Name: a.Emotion.Name}
	}
	return dto
}

func refFromModel(a models.Account) AccountRefDTO {
	return AccountRefDTO{ID: a.ID, ScreenName: a.ScreenName, Username: a.Username}
}

func emptyIfNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
