package app

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mockchat/internal/model"
	"mockchat/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInviteInvalid     = errors.New("invalid or expired invite token")
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(user *model.User) error
	GetByEmail(email string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
	SetPasswordByEmail(email, passwordHash string) error
}

// InviteStore holds one-time set-password tokens.
type InviteStore interface {
	Upsert(invite *model.InviteToken) error
	GetValid(token string, now time.Time) (*model.InviteToken, error)
	DeleteByEmail(email string) error
}

type AuthService struct {
	users         UserStore
	invites       InviteStore
	jwtSecret     string
	jwtExpiration time.Duration
	inviteTTL     time.Duration
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginInput struct {
	Email    string
	Password string
}

type InviteInput struct {
	Name  string
	Email string
	Role  string
}

type AuthResult struct {
	Token string
	User  *model.User
}

type InviteResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(users UserStore, invites InviteStore, jwtSecret string, jwtExpiration, inviteTTL time.Duration) *AuthService {
	if inviteTTL <= 0 {
		inviteTTL = 24 * time.Hour
	}
	return &AuthService{
		users:         users,
		invites:       invites,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		inviteTTL:     inviteTTL,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = model.RoleTrainer
	}

	if name == "" || email == "" || password == "" || len(password) < 8 || !model.ValidRole(role) {
		return nil, ErrInvalidInput
	}

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Name, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		// Invited users have no password until they redeem their token.
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Name, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(id)
}

// Invite creates the user without a password and issues a one-time
// set-password token. Re-inviting an existing email only refreshes the token.
func (s *AuthService) Invite(input InviteInput) (*InviteResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	role := strings.TrimSpace(input.Role)

	if name == "" || email == "" || !model.ValidRole(role) {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			Name:  name,
			Email: email,
			Role:  role,
		}
		if err := s.users.Create(user); err != nil {
			return nil, err
		}
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate invite token failed: %w", err)
	}
	token := hex.EncodeToString(raw)

	invite := &model.InviteToken{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(s.inviteTTL),
	}
	if err := s.invites.Upsert(invite); err != nil {
		return nil, err
	}

	return &InviteResult{User: user, Token: token, ExpiresAt: invite.ExpiresAt}, nil
}

// SetPassword redeems an invite token and stores the bcrypt hash.
func (s *AuthService) SetPassword(token, password string) error {
	token = strings.TrimSpace(token)
	password = strings.TrimSpace(password)
	if token == "" || password == "" || len(password) < 8 {
		return ErrInvalidInput
	}

	invite, err := s.invites.GetValid(token, time.Now())
	if err != nil {
		return err
	}
	if invite == nil {
		return ErrInviteInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	if err := s.users.SetPasswordByEmail(invite.Email, string(hash)); err != nil {
		return err
	}
	return s.invites.DeleteByEmail(invite.Email)
}
