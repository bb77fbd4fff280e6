package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"rollcall/internal/attendance"
)

var (
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

var validate = validator.New()

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Registration is the input of Register.
type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
	Role     string `validate:"omitempty,oneof=teacher student admin"`
}

// Session is what a successful login returns.
type Session struct {
	User   attendance.User
	Tokens TokenPair
}

// Accounts registers users and signs them in.
type Accounts struct {
	users      attendance.Users
	issuer     string
	signingKey string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAccounts creates an account service issuing tokens with the given settings.
func NewAccounts(users attendance.Users, issuer, signingKey string, accessTTL, refreshTTL time.Duration) *Accounts {
	return &Accounts{
		users:      users,
		issuer:     issuer,
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register validates and stores a new user. Role defaults to teacher.
func (a *Accounts) Register(ctx context.Context, r Registration) (attendance.User, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if err := validate.Struct(r); err != nil {
		return attendance.User{}, registrationError(err)
	}
	if r.Role == "" {
		r.Role = attendance.RoleTeacher
	}

	hash, err := HashPassword(r.Password)
	if err != nil {
		return attendance.User{}, fmt.Errorf("hash password: %w", err)
	}
	return a.users.CreateUser(ctx, attendance.User{
		Name:         r.Name,
		Email:        r.Email,
		Role:         r.Role,
		PasswordHash: hash,
	})
}

// Login checks the password and issues a token pair.
func (a *Accounts) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, attendance.ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	tokens, err := Issue(u.ID, u.Role, u.Name, a.issuer, a.signingKey, a.accessTTL, a.refreshTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}
	return Session{User: u, Tokens: tokens}, nil
}

func registrationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" required")
		case "email":
			msgs = append(msgs, "invalid email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("unknown %s %q", field, fe.Value()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, strings.Join(msgs, "; "))
}
