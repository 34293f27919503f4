package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

const minPasswordLength = 8

// Claims is the JWT payload issued at login
type Claims struct {
	UserID     int64  `json:"id"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts claims back into the request identity
func (c *Claims) Actor() authz.Actor {
	return authz.Actor{
		ID:         c.UserID,
		EmployeeID: c.EmployeeID,
		Name:       c.Name,
		Email:      c.Email,
		Department: c.Department,
		Role:       authz.Role(c.Role),
	}
}

// LoginResult is the payload returned on successful login
type LoginResult struct {
	Token string                 `json:"token"`
	User  *entity.UserWithAccess `json:"user"`
}

// AuthService authenticates users and issues and verifies tokens
type AuthService interface {
	Login(ctx context.Context, employeeID, password string) (*LoginResult, error)
	VerifyToken(tokenString string) (authz.Actor, error)
	ChangePassword(ctx context.Context, actor authz.Actor, currentPassword, newPassword string) error
}

type authServiceImpl struct {
	userRepo   port.UserRepository
	accessRepo port.SystemAccessRepository
	secret     []byte
	expiration time.Duration
	logger     Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo port.UserRepository,
	accessRepo port.SystemAccessRepository,
	secret string,
	expiration time.Duration,
	logger Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		accessRepo: accessRepo,
		secret:     []byte(secret),
		expiration: expiration,
		logger:     logger,
	}
}

// Login checks the employee id and password and issues a signed token.
// The employee id is matched case-insensitively. Unknown users and wrong
// passwords produce the same error so the response never reveals which
// part was wrong.
func (s *authServiceImpl) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" || password == "" {
		return nil, fmt.Errorf("%w: employee id and password are required", apperr.ErrValidation)
	}

	user, err := s.userRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}
		s.logger.Error("Failed to look up user", "error", err, "employee_id", employeeID)
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Login rejected", "employee_id", employeeID)
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("Failed to sign token", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("sign token: %w", err)
	}

	systems, err := s.accessRepo.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load system access", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("load system access: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "employee_id", user.EmployeeID)
	return &LoginResult{
		Token: token,
		User:  &entity.UserWithAccess{User: *user, Systems: systems},
	}, nil
}

// VerifyToken parses and validates a token and returns the actor it
// identifies
func (s *authServiceImpl) VerifyToken(tokenString string) (authz.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return authz.Actor{}, fmt.Errorf("%w: invalid token", apperr.ErrForbidden)
	}

	actor := claims.Actor()
	if actor.ID == 0 || !actor.Role.IsValid() {
		return authz.Actor{}, fmt.Errorf("%w: invalid token", apperr.ErrForbidden)
	}
	return actor, nil
}

// ChangePassword verifies the current password and stores a new hash,
// clearing the must-change flag
func (s *authServiceImpl) ChangePassword(ctx context.Context, actor authz.Actor, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}

	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("%w: current password is wrong", apperr.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update password", "error", err, "user_id", user.ID)
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", user.ID)
	return nil
}

func (s *authServiceImpl) issueToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Name:       user.Name,
		Email:      user.Email,
		Department: user.Department,
		Role:       string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			Subject:   user.EmployeeID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
