package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mockchat/internal/model"
)

type userStoreMock struct {
	byEmail map[string]*model.User
	nextID  uint
}

func newUserStoreMock() *userStoreMock {
	return &userStoreMock{byEmail: map[string]*model.User{}}
}

func (m *userStoreMock) Create(user *model.User) error {
	m.nextID++
	user.ID = m.nextID
	m.byEmail[user.Email] = user
	return nil
}

func (m *userStoreMock) GetByEmail(email string) (*model.User, error) {
	return m.byEmail[email], nil
}

func (m *userStoreMock) GetByID(id uint) (*model.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (m *userStoreMock) SetPasswordByEmail(email, passwordHash string) error {
	if user, ok := m.byEmail[email]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

type inviteStoreMock struct {
	byEmail map[string]*model.InviteToken
}

func newInviteStoreMock() *inviteStoreMock {
	return &inviteStoreMock{byEmail: map[string]*model.InviteToken{}}
}

func (m *inviteStoreMock) Upsert(invite *model.InviteToken) error {
	m.byEmail[invite.Email] = invite
	return nil
}

func (m *inviteStoreMock) GetValid(token string, now time.Time) (*model.InviteToken, error) {
	for _, invite := range m.byEmail {
		if invite.Token == token && invite.ExpiresAt.After(now) {
			return invite, nil
		}
	}
	return nil, nil
}

func (m *inviteStoreMock) DeleteByEmail(email string) error {
	delete(m.byEmail, email)
	return nil
}

func newTestAuthService(users *userStoreMock, invites *inviteStoreMock) *AuthService {
	return NewAuthService(users, invites, "test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	users := newUserStoreMock()
	s := newTestAuthService(users, newInviteStoreMock())

	result, err := s.Register(RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "alice@example.com", result.User.Email)
	require.Equal(t, model.RoleTrainer, result.User.Role)

	login, err := s.Login(LoginInput{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, result.User.ID, login.User.ID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	s := newTestAuthService(newUserStoreMock(), newInviteStoreMock())

	_, err := s.Register(RegisterInput{Name: "Alice", Email: "a@b.com", Password: "short"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Register(RegisterInput{Name: "Alice", Email: "a@b.com", Password: "password123", Role: "superuser"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestAuthService(newUserStoreMock(), newInviteStoreMock())

	_, err := s.Register(RegisterInput{Name: "Alice", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Name: "Other", Email: "a@b.com", Password: "password456"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newUserStoreMock()
	s := newTestAuthService(users, newInviteStoreMock())

	_, err := s.Register(RegisterInput{Name: "Alice", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	_, err = s.Login(LoginInput{Email: "a@b.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredential)

	_, err = s.Login(LoginInput{Email: "nobody@b.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginInvitedUserWithoutPassword(t *testing.T) {
	users := newUserStoreMock()
	require.NoError(t, users.Create(&model.User{Name: "Bob", Email: "bob@b.com", Role: model.RoleAgent}))
	s := newTestAuthService(users, newInviteStoreMock())

	_, err := s.Login(LoginInput{Email: "bob@b.com", Password: "anything-goes"})
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestInviteAndSetPassword(t *testing.T) {
	users := newUserStoreMock()
	invites := newInviteStoreMock()
	s := newTestAuthService(users, invites)

	result, err := s.Invite(InviteInput{Name: "Bob", Email: "bob@b.com", Role: model.RoleAgent})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Empty(t, result.User.PasswordHash)

	require.NoError(t, s.SetPassword(result.Token, "password123"))

	user, err := users.GetByEmail("bob@b.com")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	// Token is single-use.
	require.ErrorIs(t, s.SetPassword(result.Token, "password456"), ErrInviteInvalid)
}

func TestInviteExistingEmailRefreshesToken(t *testing.T) {
	users := newUserStoreMock()
	invites := newInviteStoreMock()
	s := newTestAuthService(users, invites)

	first, err := s.Invite(InviteInput{Name: "Bob", Email: "bob@b.com", Role: model.RoleAgent})
	require.NoError(t, err)
	second, err := s.Invite(InviteInput{Name: "Bob", Email: "bob@b.com", Role: model.RoleAgent})
	require.NoError(t, err)

	require.Equal(t, first.User.ID, second.User.ID)
	require.NotEqual(t, first.Token, second.Token)
	require.ErrorIs(t, s.SetPassword(first.Token, "password123"), ErrInviteInvalid)
}

func TestSetPasswordExpiredToken(t *testing.T) {
	users := newUserStoreMock()
	invites := newInviteStoreMock()
	invites.byEmail["bob@b.com"] = &model.InviteToken{
		Email:     "bob@b.com",
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	s := newTestAuthService(users, invites)

	require.ErrorIs(t, s.SetPassword("expired-token", "password123"), ErrInviteInvalid)
}
