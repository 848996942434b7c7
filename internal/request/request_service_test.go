package request_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LamineOzilJr/memoire-master2/internal/balance"
	balanceerrors "github.com/LamineOzilJr/memoire-master2/internal/balance/errors"
	"github.com/LamineOzilJr/memoire-master2/internal/events"
	"github.com/LamineOzilJr/memoire-master2/internal/messaging/kafka"
	"github.com/LamineOzilJr/memoire-master2/internal/request"
	requesterrors "github.com/LamineOzilJr/memoire-master2/internal/request/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRequestRepository struct {
	createFn               func(ctx context.Context, r *request.LeaveRequest) error
	findByIDFn             func(ctx context.Context, id string) (*request.LeaveRequest, error)
	findByEmployeeFn       func(ctx context.Context, employeeID string) ([]request.LeaveRequest, error)
	findManagerQueueFn     func(ctx context.Context, managerID string) ([]request.LeaveRequest, error)
	findStageQueueFn       func(ctx context.Context, stage request.Stage) ([]request.LeaveRequest, error)
	findAllFn              func(ctx context.Context) ([]request.LeaveRequest, error)
	findApprovedBetweenFn  func(ctx context.Context, from, to time.Time) ([]request.LeaveRequest, error)
	updateVersionedFn      func(ctx context.Context, r *request.LeaveRequest, expectedVersion int) (int64, error)
	deleteFn               func(ctx context.Context, id string) error
	hasOverlappingPeriodFn func(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) request.Repository { return f }

func (f *fakeRequestRepository) Create(ctx context.Context, r *request.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*request.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) FindByEmployee(ctx context.Context, employeeID string) ([]request.LeaveRequest, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindManagerQueue(ctx context.Context, managerID string) ([]request.LeaveRequest, error) {
	if f.findManagerQueueFn != nil {
		return f.findManagerQueueFn(ctx, managerID)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindStageQueue(ctx context.Context, stage request.Stage) ([]request.LeaveRequest, error) {
	if f.findStageQueueFn != nil {
		return f.findStageQueueFn(ctx, stage)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindAll(ctx context.Context) ([]request.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindApprovedBetween(ctx context.Context, from, to time.Time) ([]request.LeaveRequest, error) {
	if f.findApprovedBetweenFn != nil {
		return f.findApprovedBetweenFn(ctx, from, to)
	}
	return nil, nil
}

func (f *fakeRequestRepository) UpdateVersioned(ctx context.Context, r *request.LeaveRequest, expectedVersion int) (int64, error) {
	if f.updateVersionedFn != nil {
		return f.updateVersionedFn(ctx, r, expectedVersion)
	}
	return 1, nil
}

func (f *fakeRequestRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeRequestRepository) HasOverlappingPeriod(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, employeeID, start, end, excludeID)
	}
	return false, nil
}

type fakeBalanceRepository struct {
	createFn         func(ctx context.Context, b *balance.LeaveBalance) error
	findByEmployeeFn func(ctx context.Context, employeeID string) ([]balance.LeaveBalance, error)
	findOneFn        func(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error)
	debitFn          func(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	creditFn         func(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) Create(ctx context.Context, b *balance.LeaveBalance) error {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) FindByEmployee(ctx context.Context, employeeID string) ([]balance.LeaveBalance, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeBalanceRepository) FindOne(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	if f.findOneFn != nil {
		return f.findOneFn(ctx, employeeID, leaveTypeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) Debit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if f.debitFn != nil {
		return f.debitFn(ctx, employeeID, leaveTypeID, year, days)
	}
	return nil
}

func (f *fakeBalanceRepository) Credit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if f.creditFn != nil {
		return f.creditFn(ctx, employeeID, leaveTypeID, year, days)
	}
	return nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeDirectory struct {
	findManagerIDFn func(ctx context.Context, employeeID string) (*uuid.UUID, error)
}

func (f *fakeDirectory) FindManagerID(ctx context.Context, employeeID string) (*uuid.UUID, error) {
	if f.findManagerIDFn != nil {
		return f.findManagerIDFn(ctx, employeeID)
	}
	return nil, nil
}

type requestServiceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     request.Service
	repo        *fakeRequestRepository
	balanceRepo *fakeBalanceRepository
	outbox      *fakeOutboxRepository
	directory   *fakeDirectory
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	balanceRepo := &fakeBalanceRepository{}
	outbox := &fakeOutboxRepository{}
	directory := &fakeDirectory{}
	svc := request.NewService(db, repo, balanceRepo, outbox, directory)

	return &requestServiceDeps{
		db:          db,
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		balanceRepo: balanceRepo,
		outbox:      outbox,
		directory:   directory,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	managerID := uuid.New()
	leaveTypeID := uuid.New()
	actor := request.Actor{EmployeeID: employeeID.String(), Role: request.RoleSalarie}

	t.Run("success", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findManagerIDFn = func(ctx context.Context, eid string) (*uuid.UUID, error) {
			assert.Equal(t, employeeID.String(), eid)
			return &managerID, nil
		}
		deps.repo.createFn = func(ctx context.Context, r *request.LeaveRequest) error {
			assert.Equal(t, employeeID, r.EmployeeID)
			assert.Equal(t, managerID, r.ManagerID)
			assert.Equal(t, 3, r.TotalDays)
			assert.Equal(t, request.StatusPending, r.ManagerStatus)
			assert.Equal(t, 1, r.Version)
			return nil
		}

		resp, err := deps.service.Submit(ctx, actor, request.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-04",
			Reason:      "Family event",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(request.StageManager), resp.ActiveStage)
		assert.Equal(t, string(request.PipelineActive), resp.State)
		assert.Equal(t, 3, resp.TotalDays)
		assert.False(t, resp.OverlapFlag)
		assert.Equal(t, 1, resp.Version)

		assert.Len(t, deps.outbox.created, 1)
		row := deps.outbox.created[0]
		assert.Equal(t, events.LeaveRequestSubmittedTopic, row.Topic)
		assert.Equal(t, events.TypeSubmitted, row.EventType)
		assert.Equal(t, kafka.OutboxStatusPending, row.Status)

		var event events.LeaveRequestSubmittedEvent
		assert.NoError(t, json.Unmarshal(row.Payload, &event))
		assert.Equal(t, []string{events.RecipientEmployee(managerID.String())}, event.Recipients)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success flags overlapping period", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findManagerIDFn = func(ctx context.Context, eid string) (*uuid.UUID, error) {
			return &managerID, nil
		}
		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, eid string, start, end time.Time, excludeID *string) (bool, error) {
			assert.Nil(t, excludeID)
			return true, nil
		}

		resp, err := deps.service.Submit(ctx, actor, request.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-04",
			Reason:      "Family event",
		})

		assert.NoError(t, err)
		assert.True(t, resp.OverlapFlag)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative no manager assigned", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findManagerIDFn = func(ctx context.Context, eid string) (*uuid.UUID, error) {
			return nil, nil
		}

		_, err := deps.service.Submit(ctx, actor, request.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-04",
			Reason:      "Family event",
		})

		assert.ErrorIs(t, err, requesterrors.ErrNoManagerAssigned)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("negative end before start", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, actor, request.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "2026-03-10",
			EndDate:     "2026-03-02",
			Reason:      "Family event",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateRange)
	})
}

func TestRequestService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("success full four stage approval debits at the second gate", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			cp := *r
			return &cp, nil
		}
		deps.repo.updateVersionedFn = func(ctx context.Context, updated *request.LeaveRequest, expectedVersion int) (int64, error) {
			assert.Equal(t, r.Version, expectedVersion)
			cp := *updated
			cp.Version = expectedVersion + 1
			r = &cp
			return 1, nil
		}

		debits := 0
		deps.balanceRepo.findOneFn = func(ctx context.Context, eid, ltid string, year int) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{}, nil
		}
		deps.balanceRepo.debitFn = func(ctx context.Context, eid, ltid string, year int, days decimal.Decimal) error {
			debits++
			assert.Equal(t, r.EmployeeID.String(), eid)
			assert.True(t, decimal.NewFromInt(5).Equal(days))
			return nil
		}

		steps := []struct {
			actor request.Actor
			stage request.Stage
		}{
			{request.Actor{EmployeeID: r.ManagerID.String(), Role: request.RoleManager}, request.StageManager},
			{request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH}, request.StageRH},
			{request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleChefService}, request.StageChefService},
			{request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleDG}, request.StageDG},
		}
		for i, step := range steps {
			expectTx(t, deps.sqlMock, true)
			resp, err := deps.service.Decide(ctx, step.actor, r.ID.String(), request.DecideRequest{
				Stage:   string(step.stage),
				Action:  string(request.ActionApprove),
				Version: i + 1,
			})
			assert.NoError(t, err)
			assert.Equal(t, i+2, resp.Version)
			if i < len(steps)-1 {
				assert.Equal(t, string(request.Pipeline[i+1]), resp.ActiveStage)
				assert.Equal(t, string(request.PipelineActive), resp.State)
			} else {
				assert.Empty(t, resp.ActiveStage)
				assert.Equal(t, string(request.PipelineComplete), resp.State)
			}
		}

		assert.Equal(t, 1, debits)
		assert.True(t, r.BalanceDebited)
		assert.Len(t, deps.outbox.created, 4)

		var final events.LeaveRequestDecidedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[3].Payload, &final))
		assert.Equal(t, events.TypeStageApproved, final.EventType)
		assert.Equal(t, string(request.PipelineComplete), final.Outcome)
		assert.Equal(t, []string{events.RecipientEmployee(r.EmployeeID.String())}, final.Recipients)

		var second events.LeaveRequestDecidedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[1].Payload, &second))
		assert.Equal(t, string(request.StageChefService), second.Outcome)
		assert.Contains(t, second.Recipients, events.RecipientRole(request.RoleChefService))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success leave type without balance row skips the ledger", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}
		deps.balanceRepo.findOneFn = func(ctx context.Context, eid, ltid string, year int) (*balance.LeaveBalance, error) {
			return nil, gorm.ErrRecordNotFound
		}
		deps.balanceRepo.debitFn = func(ctx context.Context, eid, ltid string, year int, days decimal.Decimal) error {
			t.Fatal("debit must not run for an unlimited leave type")
			return nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageRH), Action: string(request.ActionApprove), Version: 1},
		)

		assert.NoError(t, err)
		assert.False(t, resp.OverlapFlag)
		assert.False(t, r.BalanceDebited)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success rejection after debit credits back exactly once", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager, request.StageRH)
		r.BalanceDebited = true
		r.Version = 3
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		credits := 0
		deps.balanceRepo.creditFn = func(ctx context.Context, eid, ltid string, year int, days decimal.Decimal) error {
			credits++
			assert.True(t, decimal.NewFromInt(5).Equal(days))
			return nil
		}

		var saved *request.LeaveRequest
		deps.repo.updateVersionedFn = func(ctx context.Context, updated *request.LeaveRequest, expectedVersion int) (int64, error) {
			assert.Equal(t, 3, expectedVersion)
			saved = updated
			return 1, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleChefService},
			r.ID.String(),
			request.DecideRequest{
				Stage:   string(request.StageChefService),
				Action:  string(request.ActionReject),
				Comment: "Understaffed that week",
				Version: 3,
			},
		)

		assert.NoError(t, err)
		assert.Equal(t, 1, credits)
		assert.NotNil(t, saved)
		assert.False(t, saved.BalanceDebited)
		assert.Equal(t, string(request.PipelineRejected), resp.State)

		var event events.LeaveRequestDecidedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[0].Payload, &event))
		assert.Equal(t, events.TypeStageRejected, event.EventType)
		assert.Equal(t, "Understaffed that week", event.Comment)
		// The requester and every actor that already handled the request
		// hear about the rejection.
		assert.ElementsMatch(t, []string{
			events.RecipientEmployee(r.EmployeeID.String()),
			events.RecipientEmployee(r.ManagerID.String()),
			events.RecipientRole(request.RoleServiceRH),
		}, event.Recipients)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative missing comment on request_info and reject", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		for _, action := range []request.Action{request.ActionRequestInfo, request.ActionReject} {
			_, err := deps.service.Decide(ctx,
				request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH},
				uuid.New().String(),
				request.DecideRequest{Stage: string(request.StageRH), Action: string(action), Version: 1},
			)
			assert.ErrorIs(t, err, requesterrors.ErrMissingComment)
		}
	})

	t.Run("negative role cannot decide another stage", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageManager), Action: string(request.ActionApprove), Version: 1},
		)

		assert.ErrorIs(t, err, requesterrors.ErrUnauthorizedStage)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative manager gate requires the request's own manager", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleManager},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageManager), Action: string(request.ActionApprove), Version: 1},
		)

		assert.ErrorIs(t, err, requesterrors.ErrUnauthorizedStage)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative deciding a non-active stage is stale", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageRH), Action: string(request.ActionApprove), Version: 1},
		)

		assert.ErrorIs(t, err, requesterrors.ErrStaleTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative stale version token", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		r.Version = 4
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: r.ManagerID.String(), Role: request.RoleManager},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageManager), Action: string(request.ActionApprove), Version: 2},
		)

		assert.ErrorIs(t, err, requesterrors.ErrConcurrentModification)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative lost compare-and-swap at save time", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}
		deps.repo.updateVersionedFn = func(ctx context.Context, updated *request.LeaveRequest, expectedVersion int) (int64, error) {
			return 0, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: r.ManagerID.String(), Role: request.RoleManager},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageManager), Action: string(request.ActionApprove), Version: 1},
		)

		assert.ErrorIs(t, err, requesterrors.ErrConcurrentModification)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance aborts the HR approval", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}
		deps.balanceRepo.findOneFn = func(ctx context.Context, eid, ltid string, year int) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{}, nil
		}
		deps.balanceRepo.debitFn = func(ctx context.Context, eid, ltid string, year int, days decimal.Decimal) error {
			return balanceerrors.ErrInsufficientBalance
		}
		deps.repo.updateVersionedFn = func(ctx context.Context, updated *request.LeaveRequest, expectedVersion int) (int64, error) {
			t.Fatal("save must not run after the debit was refused")
			return 0, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageRH), Action: string(request.ActionApprove), Version: 1},
		)

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success manager approval refreshes the overlap flag", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}
		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, eid string, start, end time.Time, excludeID *string) (bool, error) {
			assert.NotNil(t, excludeID)
			assert.Equal(t, r.ID.String(), *excludeID)
			return true, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Decide(ctx,
			request.Actor{EmployeeID: r.ManagerID.String(), Role: request.RoleManager},
			r.ID.String(),
			request.DecideRequest{Stage: string(request.StageManager), Action: string(request.ActionApprove), Version: 1},
		)

		assert.NoError(t, err)
		assert.True(t, resp.OverlapFlag)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRequestService_Edit(t *testing.T) {
	ctx := context.Background()
	leaveTypeID := uuid.New()

	t.Run("success before any review started", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		var saved *request.LeaveRequest
		deps.repo.updateVersionedFn = func(ctx context.Context, updated *request.LeaveRequest, expectedVersion int) (int64, error) {
			saved = updated
			return 1, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Edit(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
			request.EditLeaveRequest{
				LeaveTypeID: leaveTypeID.String(),
				StartDate:   "2026-04-06",
				EndDate:     "2026-04-08",
				Reason:      "Moved the trip",
				Version:     1,
			},
		)

		assert.NoError(t, err)
		assert.Equal(t, "2026-04-06", resp.StartDate)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, 2, resp.Version)
		assert.Equal(t, request.StatusPending, saved.ManagerStatus)

		var event events.LeaveRequestSubmittedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[0].Payload, &event))
		assert.Equal(t, events.TypeResubmitted, event.EventType)
		assert.Equal(t, []string{events.RecipientEmployee(r.ManagerID.String())}, event.Recipients)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success resets an info-requested stage to pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		comment := "Please attach the medical certificate"
		r := requestAtStage(request.StageManager)
		r.SetStageRecord(request.StageRH, request.StageRecord{Status: request.StatusInfoRequested, Comment: &comment})
		r.Version = 2
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		var saved *request.LeaveRequest
		deps.repo.updateVersionedFn = func(ctx context.Context, updated *request.LeaveRequest, expectedVersion int) (int64, error) {
			saved = updated
			return 1, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Edit(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
			request.EditLeaveRequest{
				LeaveTypeID: leaveTypeID.String(),
				StartDate:   "2026-04-06",
				EndDate:     "2026-04-08",
				Reason:      "Certificate attached",
				DocumentRef: "doc-123",
				Version:     2,
			},
		)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPending, saved.RhStatus)
		assert.Nil(t, saved.RhComment)
		assert.Equal(t, string(request.StageRH), resp.ActiveStage)

		var event events.LeaveRequestSubmittedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[0].Payload, &event))
		assert.Equal(t, []string{events.RecipientRole(request.RoleServiceRH)}, event.Recipients)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative under active review", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Edit(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
			request.EditLeaveRequest{
				LeaveTypeID: leaveTypeID.String(),
				StartDate:   "2026-04-06",
				EndDate:     "2026-04-08",
				Reason:      "Moved the trip",
				Version:     1,
			},
		)

		assert.ErrorIs(t, err, requesterrors.ErrEditNotAllowed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not the owner", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.Edit(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleSalarie},
			r.ID.String(),
			request.EditLeaveRequest{
				LeaveTypeID: leaveTypeID.String(),
				StartDate:   "2026-04-06",
				EndDate:     "2026-04-08",
				Reason:      "Moved the trip",
				Version:     1,
			},
		)

		assert.ErrorIs(t, err, requesterrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRequestService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("success at the manager gate", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}
		deleted := false
		deps.repo.deleteFn = func(ctx context.Context, id string) error {
			assert.Equal(t, r.ID.String(), id)
			deleted = true
			return nil
		}

		err := deps.service.Withdraw(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("negative once the manager has decided", func(t *testing.T) {
		for _, status := range []request.StageStatus{request.StatusApproved, request.StatusInfoRequested} {
			deps := setupRequestServiceTest(t)

			r := requestAtStage()
			r.ManagerStatus = status
			deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
				return r, nil
			}
			deps.repo.deleteFn = func(ctx context.Context, id string) error {
				t.Fatalf("a request with manager status %s must not be deleted", status)
				return nil
			}

			err := deps.service.Withdraw(ctx,
				request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
				r.ID.String(),
			)

			assert.ErrorIs(t, err, requesterrors.ErrWithdrawNotAllowed)
			deps.db.Close()
		}
	})

	t.Run("negative once the balance moved", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager)
		r.BalanceDebited = true
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		err := deps.service.Withdraw(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.ErrorIs(t, err, requesterrors.ErrWithdrawNotAllowed)
	})

	t.Run("negative past the first two gates", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager, request.StageRH)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		err := deps.service.Withdraw(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.ErrorIs(t, err, requesterrors.ErrWithdrawNotAllowed)
	})

	t.Run("negative not the owner", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		err := deps.service.Withdraw(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.ErrorIs(t, err, requesterrors.ErrNotRequestOwner)
	})
}

func TestRequestService_GetAttestation(t *testing.T) {
	ctx := context.Background()

	t.Run("success for a fully approved request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.Pipeline...)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		pdf, err := deps.service.GetAttestation(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.NoError(t, err)
		assert.True(t, len(pdf) > 0)
		assert.Equal(t, "%PDF-1.4", string(pdf[:8]))
	})

	t.Run("negative while the pipeline is still active", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.StageManager)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		_, err := deps.service.GetAttestation(ctx,
			request.Actor{EmployeeID: r.EmployeeID.String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.ErrorIs(t, err, requesterrors.ErrAttestationNotAvailable)
	})

	t.Run("negative hidden from another employee", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage(request.Pipeline...)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return r, nil
		}

		_, err := deps.service.GetAttestation(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleSalarie},
			r.ID.String(),
		)

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotAccessible)
	})
}

func TestRequestService_ListQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("success HR queue marks actionable rows", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		atRH := requestAtStage(request.StageManager)
		deps.repo.findStageQueueFn = func(ctx context.Context, stage request.Stage) ([]request.LeaveRequest, error) {
			assert.Equal(t, request.StageRH, stage)
			return []request.LeaveRequest{*atRH}, nil
		}

		items, err := deps.service.ListQueue(ctx, request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleServiceRH})

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.True(t, items[0].Actionable)
		assert.Equal(t, string(request.StageRH), items[0].ActiveStage)
	})

	t.Run("success manager queue recomputes the overlap flag", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := requestAtStage()
		deps.repo.findManagerQueueFn = func(ctx context.Context, managerID string) ([]request.LeaveRequest, error) {
			assert.Equal(t, r.ManagerID.String(), managerID)
			return []request.LeaveRequest{*r}, nil
		}
		// A conflicting request filed after submission: the stored flag is
		// still false, the fresh check says otherwise.
		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
			assert.Equal(t, r.EmployeeID.String(), employeeID)
			if assert.NotNil(t, excludeID) {
				assert.Equal(t, r.ID.String(), *excludeID)
			}
			return true, nil
		}

		items, err := deps.service.ListQueue(ctx, request.Actor{EmployeeID: r.ManagerID.String(), Role: request.RoleManager})

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.True(t, items[0].OverlapFlag)
	})

	t.Run("negative unknown role", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.ListQueue(ctx, request.Actor{EmployeeID: uuid.New().String(), Role: "INTERN"})

		assert.ErrorIs(t, err, requesterrors.ErrUnauthorizedStage)
	})
}

func TestRequestService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("negative not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.GetByID(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleAdmin},
			uuid.New().String(),
		)

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
	})

	t.Run("negative repo error passes through", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return nil, errors.New("db error")
		}

		_, err := deps.service.GetByID(ctx,
			request.Actor{EmployeeID: uuid.New().String(), Role: request.RoleAdmin},
			uuid.New().String(),
		)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, requesterrors.ErrRequestNotFound)
	})
}
