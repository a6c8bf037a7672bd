package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// AuthService issues sessions for anonymous customers and baristas.
type AuthService struct {
	db        *gorm.DB
	signer    *utils.TokenSigner
	blacklist utils.TokenBlacklist
}

func NewAuthService(db *gorm.DB, signer *utils.TokenSigner, blacklist utils.TokenBlacklist) *AuthService {
	if blacklist == nil {
		blacklist = utils.NewMemoryBlacklist()
	}
	return &AuthService{db: db, signer: signer, blacklist: blacklist}
}

// SignInAnonymously creates a fresh anonymous identity for a customer.
func (s *AuthService) SignInAnonymously(ctx context.Context) (*models.Session, error) {
	const op = "SignInAnonymously"

	user := models.User{ID: uuid.NewString(), IsAnonymous: true}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, persistenceError(op, err)
	}
	return s.issue(op, user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "SignIn"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError(op, map[string]any{"field": "email,password", "reason": "required"})
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND is_anonymous = ?", email, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, authorizationError(op, reasonInvalidCredentials)
	}
	if err != nil {
		return nil, persistenceError(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, authorizationError(op, reasonInvalidCredentials)
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("barista signed in")
	return s.issue(op, user)
}

// SignOut revokes the session token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, sess *models.Session) error {
	const op = "SignOut"

	if sess == nil || sess.Token == "" {
		return authorizationError(op, reasonInvalidSession)
	}
	if err := s.blacklist.Revoke(ctx, sess.Token, sess.ExpiresAt); err != nil {
		return persistenceError(op, err)
	}
	return nil
}

// Authenticate turns a bearer token into the request's session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	const op = "Authenticate"

	claims, err := s.signer.ParseToken(token)
	if err != nil {
		return nil, authorizationError(op, reasonInvalidSession)
	}
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	if revoked {
		return nil, authorizationError(op, reasonInvalidSession)
	}

	return &models.Session{
		UserID:      claims.UserID,
		Email:       claims.Email,
		IsAnonymous: claims.IsAnonymous,
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// CreateBarista provisions a staff account; used by the CLI.
func (s *AuthService) CreateBarista(ctx context.Context, name, email, password string) (*models.User, error) {
	const op = "CreateBarista"

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError(op, map[string]any{"field": "email", "reason": "invalid"})
	}
	if len(password) < minPasswordLength {
		return nil, validationError(op, map[string]any{"field": "password", "reason": "too_short", "min": minPasswordLength})
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, persistenceError(op, err)
	}
	if count > 0 {
		return nil, validationError(op, map[string]any{"field": "email", "reason": "taken"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, persistenceError(op, err)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    &email,
		Password: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, persistenceError(op, err)
	}

	utils.InfoLogger.Printf("New barista registered: %s", email)
	return &user, nil
}

func (s *AuthService) issue(op string, user models.User) (*models.Session, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	token, expiresAt, err := s.signer.GenerateToken(user.ID, email, user.IsAnonymous)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	return &models.Session{
		UserID:      user.ID,
		Email:       email,
		IsAnonymous: user.IsAnonymous,
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}
