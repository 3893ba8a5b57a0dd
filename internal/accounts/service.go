package accounts

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/db/models"
	"github.com/monologue-app/monologue-backend/pkg/errors"
	"github.com/monologue-app/monologue-backend/pkg/logger"
	"github.com/monologue-app/monologue-backend/pkg/pagination"
	"github.com/monologue-app/monologue-backend/pkg/security"
)

var usernamePattern = regexp.MustCompile(`^[0-9a-zA-Z]+$`)

// Mailer delivers account-facing mail. Satisfied by internal/mailer.
type Mailer interface {
	Send(ctx context.Context, to, from, subject, body string) error
}

// Service exposes account management operations.
type Service interface {
	CreateUser(ctx context.Context, input CreateAccountInput) (*AccountDTO, error)
	CreateSuperuser(ctx context.Context, input CreateAccountInput) (*AccountDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error)
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*AccountDTO, error)
	Patch(ctx context.Context, id uuid.UUID, input PatchAccountInput) (*AccountDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Followers(ctx context.Context, id uuid.UUID) ([]AccountRefDTO, error)
	Following(ctx context.Context, id uuid.UUID) ([]AccountRefDTO, error)
	EmailUser(ctx context.Context, id uuid.UUID, input EmailInput) error
	VerifyCredentials(ctx context.Context, username, password string) (*AccountDTO, error)
	OriginImage(ctx context.Context, id uuid.UUID) (string, error)
}

type serviceImpl struct {
	repo     Repository
	mailer   Mailer
	password config.PasswordConfig
	sendgrid config.SendgridConfig
	logg     *logger.Logger
}

// NewService wires the accounts service. mailer may be nil when mail delivery
// is not configured; EmailUser then fails with a dependency error.
func NewService(repo Repository, mailer Mailer, cfg *config.Config, logg *logger.Logger) Service {
	return &serviceImpl{
		repo:     repo,
		mailer:   mailer,
		password: cfg.Password,
		sendgrid: cfg.Sendgrid,
		logg:     logg,
	}
}

func (s *serviceImpl) CreateUser(ctx context.Context, input CreateAccountInput) (*AccountDTO, error) {
	return s.create(ctx, input, false)
}

// CreateSuperuser creates an account with staff and superuser set. Explicitly
// passing either flag as false is rejected rather than silently overridden.
func (s *serviceImpl) CreateSuperuser(ctx context.Context, input CreateAccountInput) (*AccountDTO, error) {
	if input.IsStaff != nil && !*input.IsStaff {
		return nil, errors.New(errors.CodeValidation, "superuser must have is_staff=true")
	}
	if input.IsSuperuser != nil && !*input.IsSuperuser {
		return nil, errors.New(errors.CodeValidation, "superuser must have is_superuser=true")
	}
	return s.create(ctx, input, true)
}

func (s *serviceImpl) create(ctx context.Context, input CreateAccountInput, superuser bool) (*AccountDTO, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid password")
	}

	account := &models.Account{
		ID:           uuid.New(),
		ScreenName:   strings.TrimSpace(input.ScreenName),
		Username:     username,
		Email:        normalizeEmail(input.Email),
		Bio:          input.Bio,
		PasswordHash: hash,
		IsActive:     true,
		OriginImage:  models.DefaultOriginImage,
	}
	if input.OriginImage != "" {
		account.OriginImage = input.OriginImage
	}
	if superuser {
		account.IsStaff = true
		account.IsSuperuser = true
	} else {
		if input.IsStaff != nil {
			account.IsStaff = *input.IsStaff
		}
		if input.IsSuperuser != nil {
			account.IsSuperuser = *input.IsSuperuser
		}
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, mapPersistenceError(err, "creating account")
	}

	s.logg.Info(s.logg.WithAccountID(ctx, account.ID.String()), "account created")
	return FromModel(account, nil, nil), nil
}

func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapPersistenceError(err, "fetching account")
	}
	return s.toDTO(ctx, account)
}

func (s *serviceImpl) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	accounts, next, err := s.repo.List(ctx, listAccountsParams{Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return nil, mapPersistenceError(err, "listing accounts")
	}

	items := make([]AccountDTO, 0, len(accounts))
	for i := range accounts {
		dto, err := s.toDTO(ctx, &accounts[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *dto)
	}

	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *serviceImpl) Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*AccountDTO, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapPersistenceError(err, "fetching account")
	}

	fields := map[string]any{
		"screen_name": strings.TrimSpace(input.ScreenName),
		"username":    username,
		"email":       normalizeEmail(input.Email),
		"bio":         input.Bio,
	}
	if input.OriginImage != "" {
		fields["origin_image"] = input.OriginImage
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, mapPersistenceError(err, "updating account")
	}
	return s.Get(ctx, id)
}

func (s *serviceImpl) Patch(ctx context.Context, id uuid.UUID, input PatchAccountInput) (*AccountDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapPersistenceError(err, "fetching account")
	}

	fields := map[string]any{}
	if input.ScreenName != nil {
		fields["screen_name"] = strings.TrimSpace(*input.ScreenName)
	}
	if input.Username != nil {
		username, err := normalizeUsername(*input.Username)
		if err != nil {
			return nil, err
		}
		fields["username"] = username
	}
	if input.Email != nil {
		fields["email"] = normalizeEmail(*input.Email)
	}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.OriginImage != nil {
		fields["origin_image"] = *input.OriginImage
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, mapPersistenceError(err, "updating account")
		}
	}
	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapPersistenceError(err, "deleting account")
	}
	if !found {
		return errors.New(errors.CodeNotFound, "account not found")
	}
	s.logg.Info(s.logg.WithAccountID(ctx, id.String()), "account deleted")
	return nil
}

// Follow records a one-way edge. Following is asymmetric: the reverse edge is
// never created implicitly.
func (s *serviceImpl) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return errors.New(errors.CodeValidation, "account cannot follow itself")
	}
	if _, err := s.repo.FindByID(ctx, followerID); err != nil {
		return mapPersistenceError(err, "fetching follower")
	}
	if _, err := s.repo.FindByID(ctx, followeeID); err != nil {
		return mapPersistenceError(err, "fetching followee")
	}

	if err := s.repo.CreateFollow(ctx, followerID, followeeID); err != nil {
		// Re-following is a no-op rather than a conflict.
		if asErr := errors.As(mapPersistenceError(err, "")); asErr != nil && asErr.Code() == errors.CodeConflict {
			return nil
		}
		return mapPersistenceError(err, "creating follow")
	}
	return nil
}

func (s *serviceImpl) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	removed, err := s.repo.DeleteFollow(ctx, followerID, followeeID)
	if err != nil {
		return mapPersistenceError(err, "removing follow")
	}
	if !removed {
		return errors.New(errors.CodeNotFound, "follow relation not found")
	}
	return nil
}

func (s *serviceImpl) Followers(ctx context.Context, id uuid.UUID) ([]AccountRefDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapPersistenceError(err, "fetching account")
	}
	accounts, err := s.repo.Followers(ctx, id)
	if err != nil {
		return nil, mapPersistenceError(err, "listing followers")
	}
	return toRefs(accounts), nil
}

func (s *serviceImpl) Following(ctx context.Context, id uuid.UUID) ([]AccountRefDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapPersistenceError(err, "fetching account")
	}
	accounts, err := s.repo.Following(ctx, id)
	if err != nil {
		return nil, mapPersistenceError(err, "listing following")
	}
	return toRefs(accounts), nil
}

func (s *serviceImpl) EmailUser(ctx context.Context, id uuid.UUID, input EmailInput) error {
	if s.mailer == nil {
		return errors.New(errors.CodeDependency, "mail delivery is not configured")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapPersistenceError(err, "fetching account")
	}

	from := input.From
	if from == "" {
		from = s.sendgrid.DefaultFrom
	}
	if from == "" {
		return errors.New(errors.CodeValidation, "no sender address configured")
	}

	if err := s.mailer.Send(ctx, account.Email, from, input.Subject, input.Message); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "sending mail")
	}
	s.logg.Info(s.logg.WithAccountID(ctx, id.String()), "mail sent to account")
	return nil
}

// VerifyCredentials checks a username/password pair against the stored hash.
// Inactive accounts cannot authenticate.
func (s *serviceImpl) VerifyCredentials(ctx context.Context, username, password string) (*AccountDTO, error) {
	normalized, err := normalizeUsername(username)
	if err != nil {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	account, err := s.repo.FindByUsername(ctx, normalized)
	if err != nil {
		if stdIsNotFound(err) {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return nil, mapPersistenceError(err, "fetching account")
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok || !account.IsActive {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}
	return s.toDTO(ctx, account)
}

// OriginImage returns the stored icon source path for an account.
func (s *serviceImpl) OriginImage(ctx context.Context, id uuid.UUID) (string, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", mapPersistenceError(err, "fetching account")
	}
	return account.OriginImage, nil
}

func (s *serviceImpl) toDTO(ctx context.Context, account *models.Account) (*AccountDTO, error) {
	following, err := s.repo.FollowingIDs(ctx, account.ID)
	if err != nil {
		return nil, mapPersistenceError(err, "listing following ids")
	}
	followers, err := s.repo.FollowerIDs(ctx, account.ID)
	if err != nil {
		return nil, mapPersistenceError(err, "listing follower ids")
	}
	return FromModel(account, following, followers), nil
}

func toRefs(accounts []models.Account) []AccountRefDTO {
	refs := make([]AccountRefDTO, 0, len(accounts))
	for _, account := range accounts {
		refs = append(refs, refFromModel(account))
	}
	return refs
}

// normalizeUsername applies NFKC normalization then enforces the alphanumeric
// character set. An empty username is never acceptable.
func normalizeUsername(username string) (string, error) {
	normalized := norm.NFKC.String(strings.TrimSpace(username))
	if normalized == "" {
		return "", errors.New(errors.CodeValidation, "username is required").
			WithDetails(map[string]string{"username": "must not be empty"})
	}
	if !usernamePattern.MatchString(normalized) {
		return "", errors.New(errors.CodeValidation, "username must be alphanumeric").
			WithDetails(map[string]string{"username": "only letters and digits are allowed"})
	}
	return normalized, nil
}

// normalizeEmail lowercases the domain part only; the local part is preserved
// as given.
func normalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.LastIndex(trimmed, "@")
	if at < 0 {
		return trimmed
	}
	return trimmed[:at+1] + strings.ToLower(trimmed[at+1:])
}
