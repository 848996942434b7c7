package auth_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/LamineOzilJr/memoire-master2/internal/auth"
	autherrors "github.com/LamineOzilJr/memoire-master2/internal/auth/errors"
	"github.com/LamineOzilJr/memoire-master2/internal/employee"
	"github.com/LamineOzilJr/memoire-master2/internal/request"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	findByIDFn    func(ctx context.Context, id string) (*employee.Employee, error)
	findByEmailFn func(ctx context.Context, email string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	return nil
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByRole(ctx context.Context, role string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) FindIDsByRole(ctx context.Context, role string) ([]string, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, e *employee.Employee) error { return nil }

func (f *fakeEmployeeRepository) Delete(ctx context.Context, id string) error { return nil }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	employeeID := uuid.New()
	record := &employee.Employee{
		ID:           employeeID,
		Matricule:    "RH001",
		FullName:     "Awa Diallo",
		Email:        "awa.diallo@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         request.RoleServiceRH,
	}

	t.Run("success issues both tokens with identity claims", func(t *testing.T) {
		repo := &fakeEmployeeRepository{
			findByEmailFn: func(ctx context.Context, email string) (*employee.Employee, error) {
				assert.Equal(t, record.Email, email)
				return record, nil
			},
		}

		svc := auth.NewService(repo)
		resp, err := svc.Login(ctx, record.Email, "correct-horse")

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, employeeID.String(), resp.User.EmployeeID)
		assert.Equal(t, "RH001", resp.User.Matricule)
		assert.Equal(t, request.RoleServiceRH, resp.User.Role)

		token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		assert.True(t, ok)
		assert.Equal(t, employeeID.String(), claims["employee_id"])
		assert.Equal(t, request.RoleServiceRH, claims["role"])
	})

	t.Run("negative wrong password", func(t *testing.T) {
		repo := &fakeEmployeeRepository{
			findByEmailFn: func(ctx context.Context, email string) (*employee.Employee, error) {
				return record, nil
			},
		}

		svc := auth.NewService(repo)
		_, err := svc.Login(ctx, record.Email, "wrong")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative unknown email reads the same as wrong password", func(t *testing.T) {
		svc := auth.NewService(&fakeEmployeeRepository{})

		_, err := svc.Login(ctx, "nobody@example.com", "whatever")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	employeeID := uuid.New()
	record := &employee.Employee{
		ID:           employeeID,
		Matricule:    "SAL002",
		FullName:     "Moussa Ba",
		Email:        "moussa.ba@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         request.RoleSalarie,
	}

	t.Run("success re-reads the employee so a role change takes effect", func(t *testing.T) {
		repo := &fakeEmployeeRepository{
			findByEmailFn: func(ctx context.Context, email string) (*employee.Employee, error) {
				return record, nil
			},
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				assert.Equal(t, employeeID.String(), id)
				promoted := *record
				promoted.Role = request.RoleManager
				return &promoted, nil
			},
		}

		svc := auth.NewService(repo)
		login, err := svc.Login(ctx, record.Email, "correct-horse")
		assert.NoError(t, err)

		refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)

		assert.NoError(t, err)
		assert.Equal(t, request.RoleManager, refreshed.User.Role)
	})

	t.Run("negative garbage token", func(t *testing.T) {
		svc := auth.NewService(&fakeEmployeeRepository{})

		_, err := svc.RefreshToken(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("negative token for a deleted employee", func(t *testing.T) {
		repo := &fakeEmployeeRepository{
			findByEmailFn: func(ctx context.Context, email string) (*employee.Employee, error) {
				return record, nil
			},
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}

		svc := auth.NewService(repo)
		login, err := svc.Login(ctx, record.Email, "correct-horse")
		assert.NoError(t, err)

		_, err = svc.RefreshToken(ctx, login.RefreshToken)

		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})
}

func TestAuthService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		employeeID := uuid.New()
		repo := &fakeEmployeeRepository{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				return &employee.Employee{
					ID:        employeeID,
					Matricule: "DG001",
					FullName:  "Fatou Ndiaye",
					Email:     "fatou.ndiaye@example.com",
					Role:      request.RoleDG,
				}, nil
			},
		}

		svc := auth.NewService(repo)
		me, err := svc.GetMe(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, "DG001", me.Matricule)
		assert.Equal(t, request.RoleDG, me.Role)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		svc := auth.NewService(&fakeEmployeeRepository{})

		_, err := svc.GetMe(ctx, "nope")

		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})
}
