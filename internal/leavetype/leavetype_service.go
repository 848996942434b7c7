package leavetype

import (
	"context"
	"errors"
	"net/http"

	"github.com/LamineOzilJr/memoire-master2/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLeaveTypeNotFound = apperror.New(
	apperror.CodeNotFound,
	"leave type not found",
	http.StatusNotFound,
)

type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	lt := &LeaveType{
		ID:               uuid.New(),
		Name:             req.Name,
		Description:      req.Description,
		MaxDays:          req.MaxDays,
		RequiresDocument: req.RequiresDocument,
	}
	if err := s.repo.Create(ctx, lt); err != nil {
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	lt.Name = req.Name
	lt.Description = req.Description
	lt.MaxDays = req.MaxDays
	lt.RequiresDocument = req.RequiresDocument

	if err := s.repo.Update(ctx, lt); err != nil {
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:               lt.ID.String(),
		Name:             lt.Name,
		Description:      lt.Description,
		MaxDays:          lt.MaxDays,
		RequiresDocument: lt.RequiresDocument,
	}
}
