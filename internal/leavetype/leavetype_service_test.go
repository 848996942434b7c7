package leavetype_test

import (
	"context"
	"testing"

	"github.com/LamineOzilJr/memoire-master2/internal/leavetype"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveTypeRepository struct {
	createFn   func(ctx context.Context, lt *leavetype.LeaveType) error
	findAllFn  func(ctx context.Context) ([]leavetype.LeaveType, error)
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
	updateFn   func(ctx context.Context, lt *leavetype.LeaveType) error
	deleteFn   func(ctx context.Context, id string) error
}

func (f *fakeLeaveTypeRepository) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.createFn != nil {
		return f.createFn(ctx, lt)
	}
	return nil
}

func (f *fakeLeaveTypeRepository) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveTypeRepository) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, lt)
	}
	return nil
}

func (f *fakeLeaveTypeRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func intPtr(v int) *int { return &v }

func TestLeaveTypeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success keeps the balance limit optional", func(t *testing.T) {
		repo := &fakeLeaveTypeRepository{
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				assert.Equal(t, "Unpaid", lt.Name)
				assert.Nil(t, lt.MaxDays)
				return nil
			},
		}

		svc := leavetype.NewService(repo)
		resp, err := svc.Create(ctx, leavetype.CreateLeaveTypeRequest{Name: "Unpaid"})

		assert.NoError(t, err)
		assert.Equal(t, "Unpaid", resp.Name)
		assert.Nil(t, resp.MaxDays)
	})

	t.Run("success with a yearly limit and document requirement", func(t *testing.T) {
		repo := &fakeLeaveTypeRepository{}

		svc := leavetype.NewService(repo)
		resp, err := svc.Create(ctx, leavetype.CreateLeaveTypeRequest{
			Name:             "Sick",
			MaxDays:          intPtr(15),
			RequiresDocument: true,
		})

		assert.NoError(t, err)
		assert.Equal(t, 15, *resp.MaxDays)
		assert.True(t, resp.RequiresDocument)
	})
}

func TestLeaveTypeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("negative not found", func(t *testing.T) {
		svc := leavetype.NewService(&fakeLeaveTypeRepository{})

		_, err := svc.GetByID(ctx, uuid.New().String())

		assert.ErrorIs(t, err, leavetype.ErrLeaveTypeNotFound)
	})
}
