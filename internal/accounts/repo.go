package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monologue-app/monologue-backend/pkg/db/models"
	"github.com/monologue-app/monologue-backend/pkg/pagination"
)

// Repository exposes account persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	List(ctx context.Context, params listAccountsParams) ([]models.Account, *pagination.Cursor, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CreateFollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	DeleteFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	FollowingIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	FollowerIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	Following(ctx context.Context, id uuid.UUID) ([]models.Account, error)
	Followers(ctx context.Context, id uuid.UUID) ([]models.Account, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an accounts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listAccountsParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Saids").
		Preload("Action").
		Preload("Emotion").
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repositoryImpl) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listAccountsParams) ([]models.Account, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Account{}).
		Preload("Saids").
		Preload("Action").
		Preload("Emotion")
	if params.Cursor != nil {
		query = query.Where("(date_joined, id) < (?, ?)", params.Cursor.JoinedAt, params.Cursor.ID)
	}

	var accounts []models.Account
	if err := query.Order("date_joined DESC, id DESC").Limit(limit).Find(&accounts).Error; err != nil {
		return nil, nil, err
	}

	// The cursor points at the last row returned; the resume query is
	// strictly-less-than, so the next page starts right after it.
	if len(accounts) > normalized {
		accounts = accounts[:normalized]
		last := accounts[normalized-1]
		return accounts, &pagination.Cursor{JoinedAt: last.DateJoined, ID: last.ID}, nil
	}
	return accounts, nil, nil
}

func (r *repositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the account row plus every follow edge touching it. Edges
// are removed explicitly so the behavior does not depend on the backing
// store's cascade support.
func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&models.AccountFollow{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Account{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		found = result.RowsAffected > 0
		return nil
	})
	return found, err
}

func (r *repositoryImpl) CreateFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.AccountFollow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}).Error
}

func (r *repositoryImpl) DeleteFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.AccountFollow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FollowingIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.AccountFollow{}).
		Where("follower_id = ?", id).
		Order("created_at ASC").
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *repositoryImpl) FollowerIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.AccountFollow{}).
		Where("followee_id = ?", id).
		Order("created_at ASC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *repositoryImpl) Following(ctx context.Context, id uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Joins("JOIN account_follows ON account_follows.followee_id = accounts.id").
		Where("account_follows.follower_id = ?", id).
		Order("account_follows.created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *repositoryImpl) Followers(ctx context.Context, id uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Joins("JOIN account_follows ON account_follows.follower_id = accounts.id").
		Where("account_follows.followee_id = ?", id).
		Order("account_follows.created_at ASC").
		Find(&accounts).Error
	return accounts, err
}
