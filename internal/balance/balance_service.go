package balance

import (
	"context"
	"errors"

	balanceerrors "github.com/LamineOzilJr/memoire-master2/internal/balance/errors"
	"github.com/LamineOzilJr/memoire-master2/internal/leavetype"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetByEmployee(ctx context.Context, employeeID string) ([]BalanceResponse, error)
	InitializeAnnual(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error)
}

type service struct {
	repo          Repository
	leaveTypeRepo leavetype.Repository
	logger        *zap.Logger
}

func NewService(repo Repository, leaveTypeRepo leavetype.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{repo: repo, leaveTypeRepo: leaveTypeRepo, logger: l}
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	balances, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

// InitializeAnnual seeds one balance row per balance-limited leave type for
// the given year, starting at the type's max days. Existing rows are left
// untouched so the call is safe to repeat.
func (s *service) InitializeAnnual(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error) {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	types, err := s.leaveTypeRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	created := 0
	for _, lt := range types {
		if lt.MaxDays == nil || *lt.MaxDays <= 0 {
			continue
		}

		_, err := s.repo.FindOne(ctx, employeeID, lt.ID.String(), year)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		accrued := decimal.NewFromInt(int64(*lt.MaxDays))
		b := &LeaveBalance{
			ID:            uuid.New(),
			EmployeeID:    employeeUUID,
			LeaveTypeID:   lt.ID,
			Year:          year,
			DaysAccrued:   accrued,
			DaysTaken:     decimal.Zero,
			DaysRemaining: accrued,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			s.logger.Error("initialize annual balance persist failed",
				zap.String("employee_id", employeeID),
				zap.String("leave_type_id", lt.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		created++
	}

	s.logger.Info("annual balances initialized",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("created", created),
	)

	balances, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:            b.ID.String(),
		EmployeeID:    b.EmployeeID.String(),
		LeaveTypeID:   b.LeaveTypeID.String(),
		Year:          b.Year,
		DaysAccrued:   b.DaysAccrued.String(),
		DaysTaken:     b.DaysTaken.String(),
		DaysRemaining: b.DaysRemaining.String(),
	}
}

func mapToListResponse(balances []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToResponse(b)
	}
	return resp
}
