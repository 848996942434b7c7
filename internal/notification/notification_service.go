package notification

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/LamineOzilJr/memoire-master2/internal/events"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const unreadCountKeyPrefix = "notifications:unread:"

func unreadCountKey(employeeID string) string {
	return unreadCountKeyPrefix + employeeID
}

var (
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid notification id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
)

// Directory resolves a role recipient to the concrete employees holding
// that role, so role-addressed events fan out to individual inboxes.
type Directory interface {
	FindIDsByRole(ctx context.Context, role string) ([]string, error)
}

type Service interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]NotificationResponse, error)
	UnreadCount(ctx context.Context, employeeID string) (UnreadCountResponse, error)
	MarkRead(ctx context.Context, employeeID, id string) error
	MarkAllRead(ctx context.Context, employeeID string) error
	Deliver(ctx context.Context, recipients []string, requestID, title, message string) error
}

type service struct {
	repo      Repository
	directory Directory
	rdb       *redis.Client
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(repo Repository, directory Directory, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{
		repo:      repo,
		directory: directory,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) ListByEmployee(ctx context.Context, employeeID string) ([]NotificationResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, ErrInvalidEmployeeID
	}
	ns, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(ns), nil
}

// UnreadCount is the badge counter polled by every client, so it is served
// from Redis; singleflight collapses the stampede when the cache expires.
func (s *service) UnreadCount(ctx context.Context, employeeID string) (UnreadCountResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return UnreadCountResponse{}, ErrInvalidEmployeeID
	}

	cacheKey := unreadCountKey(employeeID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return UnreadCountResponse{Unread: count}, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		count, err := s.repo.CountUnread(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			s.rdb.Set(ctx, cacheKey, strconv.FormatInt(count, 10), time.Minute)
		}
		return count, nil
	})
	if err != nil {
		return UnreadCountResponse{}, err
	}
	return UnreadCountResponse{Unread: v.(int64)}, nil
}

func (s *service) MarkRead(ctx context.Context, employeeID, id string) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidNotificationID
	}

	rows, err := s.repo.MarkRead(ctx, employeeID, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	s.invalidateUnreadCount(ctx, employeeID)
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, employeeID string) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return ErrInvalidEmployeeID
	}
	if _, err := s.repo.MarkAllRead(ctx, employeeID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, employeeID)
	return nil
}

// Deliver fans an event out to inbox rows. Unknown recipient tokens and
// empty roles are skipped, not failed: losing one recipient must not block
// the others or poison the consumer offset.
func (s *service) Deliver(ctx context.Context, recipients []string, requestID, title, message string) error {
	employeeIDs := make(map[string]struct{}, len(recipients))
	for _, token := range recipients {
		kind, value, ok := events.ParseRecipient(token)
		if !ok {
			s.logger.Warn("skip malformed notification recipient", zap.String("token", token))
			continue
		}

		switch kind {
		case "employee":
			employeeIDs[value] = struct{}{}
		case "role":
			ids, err := s.directory.FindIDsByRole(ctx, value)
			if err != nil {
				return err
			}
			for _, id := range ids {
				employeeIDs[id] = struct{}{}
			}
		}
	}
	if len(employeeIDs) == 0 {
		return nil
	}

	var reqUUID *uuid.UUID
	if parsed, err := uuid.Parse(requestID); err == nil {
		reqUUID = &parsed
	}

	ns := make([]Notification, 0, len(employeeIDs))
	for id := range employeeIDs {
		employeeUUID, err := uuid.Parse(id)
		if err != nil {
			s.logger.Warn("skip notification recipient with invalid id", zap.String("employee_id", id))
			continue
		}
		ns = append(ns, Notification{
			ID:         uuid.New(),
			EmployeeID: employeeUUID,
			RequestID:  reqUUID,
			Title:      title,
			Message:    message,
		})
	}

	if err := s.repo.CreateBatch(ctx, ns); err != nil {
		s.logger.Error("deliver notifications persist failed",
			zap.Int("count", len(ns)),
			zap.Error(err),
		)
		return err
	}

	for _, n := range ns {
		s.invalidateUnreadCount(ctx, n.EmployeeID.String())
	}

	s.logger.Info("notifications delivered",
		zap.String("request_id", requestID),
		zap.Int("count", len(ns)),
	)
	return nil
}

func (s *service) invalidateUnreadCount(ctx context.Context, employeeID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := unreadCountKey(employeeID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate unread count cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}
