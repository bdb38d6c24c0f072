// Package accounts implements signup, login, tokens and the admin and
// disabled-account rules.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/Kariqs/goutam-store/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccessDenied       = errors.New("admin access required")
	ErrSelfDisable        = errors.New("you cannot disable your own account")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset link")
)

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	ResetTTL  time.Duration
}

// Claims is what a signed token says about its bearer.
type Claims struct {
	UserID string
	Email  string
	Role   models.Role
}

type Service struct {
	users  store.UserStore
	resets ResetTokens
	secret []byte
	ttl    time.Duration
	reset  time.Duration
	log    *slog.Logger
	now    func() time.Time

	// signupMu serializes the user count check with the profile write so only
	// one account can ever become the first admin.
	signupMu sync.Mutex
}

func NewService(users store.UserStore, resets ResetTokens, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		resets: resets,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		reset:  cfg.ResetTTL,
		log:    logger,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Signup creates the identity and profile. The very first account becomes an
// admin; every later one is a regular user.
func (s *Service) Signup(ctx context.Context, data models.SignupData) (models.UserProfile, error) {
	if err := data.Validate(); err != nil {
		return models.UserProfile{}, err
	}
	email := normalizeEmail(data.Email)
	hash, err := hashPassword(data.Password)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("hashing password: %w", err)
	}

	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	if _, err := s.users.GetCredentialByEmail(ctx, email); err == nil {
		return models.UserProfile{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.UserProfile{}, err
	}

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("counting users: %w", err)
	}
	role := models.RoleUser
	if count == 0 {
		role = models.RoleAdmin
	}

	profile := models.UserProfile{Name: strings.TrimSpace(data.Name), Email: email, Role: role}
	cred := models.Credential{Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, &cred, &profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.UserProfile{}, ErrEmailTaken
		}
		return models.UserProfile{}, err
	}
	s.log.Info("user signed up", "user_id", profile.ID, "role", profile.Role)
	return profile, nil
}

// Login checks the password and returns the profile with a fresh token.
func (s *Service) Login(ctx context.Context, data models.LoginData) (models.UserProfile, string, error) {
	cred, err := s.users.GetCredentialByEmail(ctx, normalizeEmail(data.Email))
	if errors.Is(err, store.ErrNotFound) {
		return models.UserProfile{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.UserProfile{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(data.Password)); err != nil {
		return models.UserProfile{}, "", ErrInvalidCredentials
	}

	profile, err := s.users.GetUser(ctx, cred.UserID)
	if err != nil {
		return models.UserProfile{}, "", err
	}
	if profile.Disabled {
		return profile, "", ErrAccountDisabled
	}
	token, err := s.IssueToken(profile)
	if err != nil {
		return profile, "", err
	}
	return profile, token, nil
}

func (s *Service) IssueToken(u models.UserProfile) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, _ := mc["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	return Claims{UserID: userID, Email: email, Role: models.Role(role)}, nil
}

// Authenticate resolves a bearer token to the current profile. The profile is
// read fresh, so a disabled account is refused even with an unexpired token.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (models.UserProfile, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return models.UserProfile{}, err
	}
	return s.CurrentUser(ctx, claims.UserID)
}

// CurrentUser loads the profile behind a signed-in session, refusing
// deleted and disabled accounts.
func (s *Service) CurrentUser(ctx context.Context, userID string) (models.UserProfile, error) {
	if userID == "" {
		return models.UserProfile{}, ErrInvalidToken
	}
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return u, ErrInvalidToken
	}
	if err != nil {
		return u, err
	}
	if u.Disabled {
		return u, ErrAccountDisabled
	}
	return u, nil
}

// AuthorizeAdmin re-reads the role from the store on every call.
func (s *Service) AuthorizeAdmin(ctx context.Context, userID string) (models.UserProfile, error) {
	if userID == "" {
		return models.UserProfile{}, ErrAccessDenied
	}
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return u, ErrAccessDenied
	}
	if err != nil {
		return u, err
	}
	if u.Disabled || !u.IsAdmin() {
		return u, ErrAccessDenied
	}
	return u, nil
}

func (s *Service) SetUserDisabled(ctx context.Context, actorID, targetID string, disabled bool) (models.UserProfile, error) {
	if actorID == targetID {
		return models.UserProfile{}, ErrSelfDisable
	}
	u, err := s.users.SetUserDisabled(ctx, targetID, disabled)
	if err != nil {
		return u, err
	}
	s.log.Info("user disabled flag changed", "actor", actorID, "user_id", targetID, "disabled", disabled)
	return u, nil
}

// UpdateProfile applies a self-service edit. Role and disabled are not part of
// models.ProfileUpdate and so can never change here.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.UserProfile, error) {
	if err := update.Validate(); err != nil {
		return models.UserProfile{}, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}
	return s.users.UpdateProfile(ctx, userID, update)
}

// RequestPasswordReset stores a single-use reset token for email and returns
// it with the profile it belongs to.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, models.UserProfile, error) {
	cred, err := s.users.GetCredentialByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", models.UserProfile{}, err
	}
	profile, err := s.users.GetUser(ctx, cred.UserID)
	if err != nil {
		return "", profile, err
	}
	token, err := utils.GenerateCode(16)
	if err != nil {
		return "", profile, fmt.Errorf("generating reset token: %w", err)
	}
	if err := s.resets.Put(ctx, token, cred.UserID, s.reset); err != nil {
		return "", profile, err
	}
	return token, profile, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 6 {
		return &models.ValidationError{Problems: []string{"password must be at least 6 characters"}}
	}
	userID, err := s.resets.Take(ctx, token)
	if err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}
