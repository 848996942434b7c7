package app

import (
	"os"

	"github.com/LamineOzilJr/memoire-master2/internal/balance"
	"github.com/LamineOzilJr/memoire-master2/internal/department"
	"github.com/LamineOzilJr/memoire-master2/internal/employee"
	"github.com/LamineOzilJr/memoire-master2/internal/leavetype"
	"github.com/LamineOzilJr/memoire-master2/internal/notification"
	"github.com/LamineOzilJr/memoire-master2/internal/request"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	return registerModules(router, gormDB, redisClient)
}

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&department.Department{},
		&employee.Employee{},
		&leavetype.LeaveType{},
		&balance.LeaveBalance{},
		&request.LeaveRequest{},
		&notification.Notification{},
	); err != nil {
		return err
	}

	// Outbox and sequence tables are written with raw SQL, so they are
	// created the same way.
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id UUID PRIMARY KEY,
			request_id VARCHAR(64),
			aggregate_type VARCHAR(50) NOT NULL,
			aggregate_id UUID NOT NULL,
			event_type VARCHAR(50) NOT NULL,
			topic VARCHAR(100) NOT NULL,
			payload JSONB NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			error_message VARCHAR(500),
			next_retry_at TIMESTAMPTZ,
			processed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created
			ON outbox_events (status, created_at)`,
		`CREATE TABLE IF NOT EXISTS sequence_counters (
			counter_type VARCHAR(50) PRIMARY KEY,
			last_value BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	} {
		if err := gormDB.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}
