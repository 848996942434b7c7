package auth

import (
	"context"
	"os"
	"time"

	autherrors "github.com/LamineOzilJr/memoire-master2/internal/auth/errors"
	"github.com/LamineOzilJr/memoire-master2/internal/employee"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// Credentials live on the employee record itself: the approval pipeline
// has no account separate from the directory entry.
type Service interface {
	Login(ctx context.Context, email, password string) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	GetMe(ctx context.Context, employeeID string) (*AuthResponse, error)
}

type service struct {
	employeeRepo employee.Repository
	logger       *zap.Logger
}

func NewService(employeeRepo employee.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{employeeRepo: employeeRepo, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	e, err := s.employeeRepo.FindByEmail(ctx, email)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)); err != nil {
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	resp, err := s.issueTokens(e)
	if err != nil {
		s.logger.Error("login token generation failed", zap.Error(err))
		return TokenResponse{}, err
	}

	s.logger.Info("login success",
		zap.String("employee_id", e.ID.String()),
		zap.String("role", e.Role),
	)
	return resp, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	// Re-read the employee: a role change or deactivation takes effect at
	// the next refresh.
	e, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	resp, err := s.issueTokens(e)
	if err != nil {
		s.logger.Error("refresh token generation failed", zap.Error(err))
		return TokenResponse{}, err
	}
	return resp, nil
}

func (s *service) GetMe(ctx context.Context, employeeID string) (*AuthResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, autherrors.ErrInvalidToken
	}
	e, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, autherrors.ErrInvalidToken
	}
	resp := mapToAuthResponse(e)
	return &resp, nil
}

func (s *service) issueTokens(e *employee.Employee) (TokenResponse, error) {
	accessToken, err := generateToken(e.ID.String(), e.Role, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	refreshToken, err := generateToken(e.ID.String(), e.Role, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         mapToAuthResponse(e),
	}, nil
}

func generateToken(employeeID, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": employeeID,
		"role":        role,
		"exp":         time.Now().Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapToAuthResponse(e *employee.Employee) AuthResponse {
	return AuthResponse{
		EmployeeID: e.ID.String(),
		Matricule:  e.Matricule,
		Email:      e.Email,
		FullName:   e.FullName,
		Role:       e.Role,
	}
}
