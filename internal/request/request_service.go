package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LamineOzilJr/memoire-master2/internal/balance"
	"github.com/LamineOzilJr/memoire-master2/internal/events"
	"github.com/LamineOzilJr/memoire-master2/internal/messaging/kafka"
	requesterrors "github.com/LamineOzilJr/memoire-master2/internal/request/errors"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const aggregateLeaveRequest = "leave_request"

// EmployeeDirectory is the slice of the employee module the transition
// engine needs: resolving the direct manager of a requester. A nil manager
// id with a nil error means the employee exists but has nobody assigned.
type EmployeeDirectory interface {
	FindManagerID(ctx context.Context, employeeID string) (*uuid.UUID, error)
}

type Service interface {
	Submit(ctx context.Context, actor Actor, req SubmitLeaveRequest) (RequestResponse, error)
	Decide(ctx context.Context, actor Actor, id string, req DecideRequest) (RequestResponse, error)
	Edit(ctx context.Context, actor Actor, id string, req EditLeaveRequest) (RequestResponse, error)
	Withdraw(ctx context.Context, actor Actor, id string) error
	GetByID(ctx context.Context, actor Actor, id string) (RequestResponse, error)
	GetAttestation(ctx context.Context, actor Actor, id string) ([]byte, error)
	ListQueue(ctx context.Context, actor Actor) ([]QueueItem, error)
	ListByEmployee(ctx context.Context, actor Actor, employeeID string) ([]RequestResponse, error)
	ListAbsences(ctx context.Context, from, to string) ([]AbsenceView, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	overlap     *OverlapDetector
	balanceRepo balance.Repository
	outboxRepo  kafka.OutboxRepository
	directory   EmployeeDirectory
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balanceRepo balance.Repository,
	outboxRepo kafka.OutboxRepository,
	directory EmployeeDirectory,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		overlap:     NewOverlapDetector(repo),
		balanceRepo: balanceRepo,
		outboxRepo:  outboxRepo,
		directory:   directory,
		logger:      l,
	}
}

func (s *service) Submit(ctx context.Context, actor Actor, req SubmitLeaveRequest) (RequestResponse, error) {
	s.logger.Debug("submit leave request",
		zap.String("employee_id", actor.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidEmployeeID
	}
	leaveTypeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}
	startDate, endDate, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	managerID, err := s.directory.FindManagerID(ctx, actor.EmployeeID)
	if err != nil {
		s.logger.Error("submit manager lookup failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if managerID == nil {
		return RequestResponse{}, requesterrors.ErrNoManagerAssigned
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := s.overlap.HasOverlap(ctx, actor.EmployeeID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("submit overlap check failed", zap.Error(err))
		return RequestResponse{}, err
	}

	r := &LeaveRequest{
		ID:                uuid.New(),
		EmployeeID:        employeeUUID,
		ManagerID:         *managerID,
		LeaveTypeID:       leaveTypeUUID,
		StartDate:         startDate,
		EndDate:           endDate,
		TotalDays:         totalDays(startDate, endDate),
		Reason:            req.Reason,
		DocumentRef:       req.DocumentRef,
		ManagerStatus:     StatusPending,
		RhStatus:          StatusPending,
		ChefServiceStatus: StatusPending,
		DgStatus:          StatusPending,
		OverlapFlag:       overlap,
		Version:           1,
	}

	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("submit persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	event := events.LeaveRequestSubmittedEvent{
		EventType:  events.TypeSubmitted,
		RequestID:  r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		ManagerID:  r.ManagerID.String(),
		StartDate:  r.StartDate.Format("2006-01-02"),
		EndDate:    r.EndDate.Format("2006-01-02"),
		TotalDays:  r.TotalDays,
		Recipients: []string{events.RecipientEmployee(r.ManagerID.String())},
		OccurredAt: time.Now().UTC(),
	}
	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestSubmittedTopic, events.TypeSubmitted, r.ID.String(), event); err != nil {
		s.logger.Error("submit outbox enqueue failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit commit failed", zap.Error(err))
		return RequestResponse{}, err
	}
	s.logger.Info("submit leave request success",
		zap.String("request_id", r.ID.String()),
		zap.String("employee_id", actor.EmployeeID),
		zap.Bool("overlap_flag", overlap),
	)

	return mapToResponse(*r), nil
}

// Decide applies one stage decision: authorize the actor against the
// stage, hold the single-active-stage rule, apply the action and its
// ledger side effects, enqueue the notification event and save under the
// version token. Everything commits or rolls back together.
func (s *service) Decide(ctx context.Context, actor Actor, id string, req DecideRequest) (RequestResponse, error) {
	s.logger.Debug("decide leave request",
		zap.String("request_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("role", actor.Role),
		zap.String("stage", req.Stage),
		zap.String("action", req.Action),
	)

	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}
	stage, ok := ParseStage(req.Stage)
	if !ok {
		return RequestResponse{}, requesterrors.ErrInvalidStage
	}
	action := Action(req.Action)
	switch action {
	case ActionApprove, ActionRequestInfo, ActionReject:
	default:
		return RequestResponse{}, requesterrors.ErrInvalidAction
	}
	if (action == ActionRequestInfo || action == ActionReject) && req.Comment == "" {
		return RequestResponse{}, requesterrors.ErrMissingComment
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}

	if err := authorizeStage(r, stage, actor); err != nil {
		s.logger.Warn("decide authorization refused",
			zap.String("request_id", id),
			zap.String("role", actor.Role),
			zap.String("stage", string(stage)),
		)
		return RequestResponse{}, err
	}

	active, state := ActiveStage(r)
	if state != PipelineActive || active != stage {
		s.logger.Warn("decide stale transition",
			zap.String("request_id", id),
			zap.String("stage", string(stage)),
			zap.String("active_stage", string(active)),
			zap.String("state", string(state)),
		)
		return RequestResponse{}, requesterrors.ErrStaleTransition
	}

	if r.Version != req.Version {
		return RequestResponse{}, requesterrors.ErrConcurrentModification
	}

	now := time.Now().UTC()
	rec := StageRecord{DecidedAt: &now}
	if req.Comment != "" {
		comment := req.Comment
		rec.Comment = &comment
	}
	switch action {
	case ActionApprove:
		rec.Status = StatusApproved
	case ActionRequestInfo:
		rec.Status = StatusInfoRequested
	case ActionReject:
		rec.Status = StatusRejected
	}
	r.SetStageRecord(stage, rec)

	if action == ActionApprove && stage == StageManager {
		// Manager approval refreshes the advisory flag; a conflict that
		// appeared after submission must surface to HR.
		excludeID := r.ID.String()
		overlap, err := s.overlap.HasOverlap(ctx, r.EmployeeID.String(), r.StartDate, r.EndDate, &excludeID)
		if err != nil {
			s.logger.Error("decide overlap refresh failed", zap.Error(err))
			return RequestResponse{}, err
		}
		r.OverlapFlag = overlap
	}

	if action == ActionApprove && stage == StageRH {
		if err := s.debitBalance(ctx, tx, r); err != nil {
			return RequestResponse{}, err
		}
	}

	if action == ActionReject && r.BalanceDebited {
		if err := s.balanceRepo.WithTx(tx).Credit(ctx,
			r.EmployeeID.String(), r.LeaveTypeID.String(), r.StartDate.Year(),
			decimal.NewFromInt(int64(r.TotalDays)),
		); err != nil {
			s.logger.Error("decide balance credit-back failed",
				zap.String("request_id", id),
				zap.Error(err),
			)
			return RequestResponse{}, err
		}
		r.BalanceDebited = false
	}

	_, outcomeState := ActiveStage(r)
	event := buildDecidedEvent(r, stage, action, req.Comment, now)
	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestDecidedTopic, event.EventType, r.ID.String(), event); err != nil {
		s.logger.Error("decide outbox enqueue failed", zap.Error(err))
		return RequestResponse{}, err
	}

	rows, err := qtx.UpdateVersioned(ctx, r, req.Version)
	if err != nil {
		s.logger.Error("decide persist failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}
	if rows == 0 {
		return RequestResponse{}, requesterrors.ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide commit failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}
	r.Version = req.Version + 1

	s.logger.Info("decide leave request success",
		zap.String("request_id", id),
		zap.String("stage", string(stage)),
		zap.String("action", string(action)),
		zap.String("outcome", string(outcomeState)),
	)

	return mapToResponse(*r), nil
}

// Edit lets the requester change the period, type or reason while the
// request is still editable: before any review started, or whenever the
// active stage asked for more information. An info-requested stage resets
// to PENDING so the same reviewer sees the resubmission.
func (s *service) Edit(ctx context.Context, actor Actor, id string, req EditLeaveRequest) (RequestResponse, error) {
	s.logger.Debug("edit leave request",
		zap.String("request_id", id),
		zap.String("actor_id", actor.EmployeeID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}
	leaveTypeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}
	startDate, endDate, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("edit begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	if r.EmployeeID.String() != actor.EmployeeID && actor.Role != RoleAdmin {
		return RequestResponse{}, requesterrors.ErrNotRequestOwner
	}

	active, state := ActiveStage(r)
	if state != PipelineActive {
		return RequestResponse{}, requesterrors.ErrEditNotAllowed
	}
	activeRec := r.StageRecord(active)
	untouched := active == StageManager && activeRec.Status == StatusPending
	if !untouched && activeRec.Status != StatusInfoRequested {
		return RequestResponse{}, requesterrors.ErrEditNotAllowed
	}

	if r.Version != req.Version {
		return RequestResponse{}, requesterrors.ErrConcurrentModification
	}

	r.LeaveTypeID = leaveTypeUUID
	r.StartDate = startDate
	r.EndDate = endDate
	r.TotalDays = totalDays(startDate, endDate)
	r.Reason = req.Reason
	r.DocumentRef = req.DocumentRef

	if activeRec.Status == StatusInfoRequested {
		r.SetStageRecord(active, StageRecord{Status: StatusPending})
	}

	excludeID := r.ID.String()
	overlap, err := s.overlap.HasOverlap(ctx, r.EmployeeID.String(), startDate, endDate, &excludeID)
	if err != nil {
		s.logger.Error("edit overlap check failed", zap.Error(err))
		return RequestResponse{}, err
	}
	r.OverlapFlag = overlap

	event := events.LeaveRequestSubmittedEvent{
		EventType:  events.TypeResubmitted,
		RequestID:  r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		ManagerID:  r.ManagerID.String(),
		StartDate:  r.StartDate.Format("2006-01-02"),
		EndDate:    r.EndDate.Format("2006-01-02"),
		TotalDays:  r.TotalDays,
		Recipients: []string{stageRecipient(r, active)},
		OccurredAt: time.Now().UTC(),
	}
	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestSubmittedTopic, events.TypeResubmitted, r.ID.String(), event); err != nil {
		s.logger.Error("edit outbox enqueue failed", zap.Error(err))
		return RequestResponse{}, err
	}

	rows, err := qtx.UpdateVersioned(ctx, r, req.Version)
	if err != nil {
		s.logger.Error("edit persist failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}
	if rows == 0 {
		return RequestResponse{}, requesterrors.ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("edit commit failed", zap.Error(err))
		return RequestResponse{}, err
	}
	r.Version = req.Version + 1

	s.logger.Info("edit leave request success",
		zap.String("request_id", id),
		zap.String("active_stage", string(active)),
	)

	return mapToResponse(*r), nil
}

// Withdraw soft-deletes the request while the manager and RH gates are
// both still untouched, so no decision and no balance movement exists.
func (s *service) Withdraw(ctx context.Context, actor Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return requesterrors.ErrInvalidRequestID
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return requesterrors.ErrRequestNotFound
		}
		return err
	}
	if r.EmployeeID.String() != actor.EmployeeID && actor.Role != RoleAdmin {
		return requesterrors.ErrNotRequestOwner
	}

	if r.ManagerStatus != StatusPending || r.RhStatus != StatusPending {
		return requesterrors.ErrWithdrawNotAllowed
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("withdraw failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("withdraw leave request success", zap.String("request_id", id))
	return nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (RequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	if !VisibleTo(r, actor.Role, actor.EmployeeID) {
		return RequestResponse{}, requesterrors.ErrRequestNotAccessible
	}
	return mapToResponse(*r), nil
}

// GetAttestation renders a leave attestation PDF for a fully approved
// request. Partially approved or rejected requests have nothing to attest.
func (s *service) GetAttestation(ctx context.Context, actor Actor, id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	if !VisibleTo(r, actor.Role, actor.EmployeeID) {
		return nil, requesterrors.ErrRequestNotAccessible
	}
	if _, state := ActiveStage(r); state != PipelineComplete {
		return nil, requesterrors.ErrAttestationNotAvailable
	}

	approvedAt := r.UpdatedAt
	if r.DgDecidedAt != nil {
		approvedAt = *r.DgDecidedAt
	}
	lines := []string{
		"ATTESTATION DE CONGE",
		"",
		fmt.Sprintf("Request reference: %s", r.ID),
		fmt.Sprintf("Employee: %s", r.EmployeeID),
		fmt.Sprintf("Period: %s to %s (%d days)",
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.TotalDays),
		fmt.Sprintf("Approved through all four stages on %s", approvedAt.Format("2006-01-02")),
	}

	pdf, err := buildAttestationPDF(lines)
	if err != nil {
		s.logger.Error("attestation render failed", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("attestation generated", zap.String("request_id", id))
	return pdf, nil
}

// ListQueue returns the role's work queue. Visibility is filtered in SQL
// where a column condition expresses it and re-checked through VisibleTo;
// the actionable flag marks the subset the role can decide right now.
func (s *service) ListQueue(ctx context.Context, actor Actor) ([]QueueItem, error) {
	var (
		reqs []LeaveRequest
		err  error
	)

	switch actor.Role {
	case RoleSalarie:
		reqs, err = s.repo.FindByEmployee(ctx, actor.EmployeeID)
	case RoleManager:
		reqs, err = s.repo.FindManagerQueue(ctx, actor.EmployeeID)
		if err == nil {
			// The stored flag dates from submission; a conflicting request
			// filed since then must show up when the manager looks.
			if err = s.refreshOverlapFlags(ctx, reqs); err != nil {
				return nil, err
			}
		}
	case RoleServiceRH:
		reqs, err = s.repo.FindStageQueue(ctx, StageRH)
	case RoleChefService:
		reqs, err = s.repo.FindStageQueue(ctx, StageChefService)
	case RoleDG:
		reqs, err = s.repo.FindStageQueue(ctx, StageDG)
	case RoleAdmin:
		reqs, err = s.repo.FindAll(ctx)
	default:
		return nil, requesterrors.ErrUnauthorizedStage
	}
	if err != nil {
		return nil, err
	}

	visible := reqs[:0]
	for i := range reqs {
		if VisibleTo(&reqs[i], actor.Role, actor.EmployeeID) {
			visible = append(visible, reqs[i])
		}
	}
	return mapToQueue(visible, actor.Role, actor.EmployeeID), nil
}

func (s *service) refreshOverlapFlags(ctx context.Context, reqs []LeaveRequest) error {
	for i := range reqs {
		excludeID := reqs[i].ID.String()
		overlap, err := s.overlap.HasOverlap(ctx, reqs[i].EmployeeID.String(), reqs[i].StartDate, reqs[i].EndDate, &excludeID)
		if err != nil {
			s.logger.Error("queue overlap refresh failed",
				zap.String("request_id", excludeID),
				zap.Error(err),
			)
			return err
		}
		reqs[i].OverlapFlag = overlap
	}
	return nil
}

func (s *service) ListByEmployee(ctx context.Context, actor Actor, employeeID string) ([]RequestResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, requesterrors.ErrInvalidEmployeeID
	}
	if actor.Role == RoleSalarie && actor.EmployeeID != employeeID {
		return nil, requesterrors.ErrRequestNotAccessible
	}

	reqs, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if actor.Role != RoleAdmin && actor.EmployeeID != employeeID {
		visible := reqs[:0]
		for i := range reqs {
			if VisibleTo(&reqs[i], actor.Role, actor.EmployeeID) {
				visible = append(visible, reqs[i])
			}
		}
		reqs = visible
	}
	return mapToListResponse(reqs), nil
}

func (s *service) ListAbsences(ctx context.Context, from, to string) ([]AbsenceView, error) {
	fromDate, toDate, err := parsePeriod(from, to)
	if err != nil {
		return nil, err
	}

	reqs, err := s.repo.FindApprovedBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return mapToAbsences(reqs), nil
}

// authorizeStage checks role-stage fit. ADMIN may decide any stage; the
// manager gate additionally requires the actor to be the request's own
// manager, not just any manager.
func authorizeStage(r *LeaveRequest, stage Stage, actor Actor) error {
	if actor.Role == RoleAdmin {
		return nil
	}
	if actor.Role != RoleForStage(stage) {
		return requesterrors.ErrUnauthorizedStage
	}
	if stage == StageManager && r.ManagerID.String() != actor.EmployeeID {
		return requesterrors.ErrUnauthorizedStage
	}
	return nil
}

// debitBalance consumes the requested days at HR approval. A leave type
// with no balance row is unlimited and skipped; an insufficient balance
// aborts the approval before anything is written.
func (s *service) debitBalance(ctx context.Context, tx *sql.Tx, r *LeaveRequest) error {
	year := r.StartDate.Year()

	_, err := s.balanceRepo.FindOne(ctx, r.EmployeeID.String(), r.LeaveTypeID.String(), year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.balanceRepo.WithTx(tx).Debit(ctx,
		r.EmployeeID.String(), r.LeaveTypeID.String(), year,
		decimal.NewFromInt(int64(r.TotalDays)),
	); err != nil {
		s.logger.Warn("decide balance debit refused",
			zap.String("request_id", r.ID.String()),
			zap.Int("days", r.TotalDays),
			zap.Error(err),
		)
		return err
	}
	r.BalanceDebited = true
	return nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, topic, eventType, aggregateID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateLeaveRequest,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
}

// buildDecidedEvent names the recipients of a decision: the requester
// always hears about it; an approval that moves the pipeline forward also
// notifies the next gate, and a rejection additionally notifies every
// stage actor that already handled the request.
func buildDecidedEvent(r *LeaveRequest, stage Stage, action Action, comment string, at time.Time) events.LeaveRequestDecidedEvent {
	active, state := ActiveStage(r)

	var (
		eventType  string
		outcome    string
		recipients = []string{events.RecipientEmployee(r.EmployeeID.String())}
	)
	switch action {
	case ActionApprove:
		eventType = events.TypeStageApproved
		if state == PipelineComplete {
			outcome = string(PipelineComplete)
		} else {
			outcome = string(active)
			recipients = append(recipients, stageRecipient(r, active))
		}
	case ActionRequestInfo:
		eventType = events.TypeInfoRequested
		outcome = string(stage)
	case ActionReject:
		eventType = events.TypeStageRejected
		outcome = string(PipelineRejected)
		for _, prior := range Pipeline {
			if prior == stage {
				break
			}
			recipients = append(recipients, stageRecipient(r, prior))
		}
	}

	return events.LeaveRequestDecidedEvent{
		EventType:  eventType,
		RequestID:  r.ID.String(),
		EmployeeID: r.EmployeeID.String(),
		Stage:      string(stage),
		Action:     string(action),
		Outcome:    outcome,
		Comment:    comment,
		Recipients: recipients,
		OccurredAt: at,
	}
}

// stageRecipient addresses the reviewer of a stage: the concrete manager
// for the first gate, the whole role for the downstream ones.
func stageRecipient(r *LeaveRequest, stage Stage) string {
	if stage == StageManager {
		return events.RecipientEmployee(r.ManagerID.String())
	}
	return events.RecipientRole(RoleForStage(stage))
}

func totalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func parsePeriod(from, to string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}
