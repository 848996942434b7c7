package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LamineOzilJr/memoire-master2/internal/balance"
	"github.com/LamineOzilJr/memoire-master2/internal/employee"
	"github.com/LamineOzilJr/memoire-master2/internal/events"
	"github.com/LamineOzilJr/memoire-master2/internal/leavetype"
	"github.com/LamineOzilJr/memoire-master2/internal/messaging/kafka/consumer"
	"github.com/LamineOzilJr/memoire-master2/internal/notification"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/connection"

	"go.uber.org/zap"
)

const consumerGroup = "leave-workflow-notifications"

// RunConsumer hosts every Kafka consumer: notification fan-out for the
// request pipeline and balance seeding for new hires.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

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

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	employeeRepo := employee.NewRepository(gormDB)
	directory := employee.NewDirectory(employeeRepo)
	notificationRepo := notification.NewRepository(gormDB)
	notificationService := notification.NewService(notificationRepo, directory, redisClient)

	leaveTypeRepo := leavetype.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	balanceService := balance.NewService(balanceRepo, leaveTypeRepo)

	submittedReader := connection.NewReader(kafkaBroker, consumerGroup, events.LeaveRequestSubmittedTopic)
	defer submittedReader.Close()
	decidedReader := connection.NewReader(kafkaBroker, consumerGroup, events.LeaveRequestDecidedTopic)
	defer decidedReader.Close()
	employeeCreatedReader := connection.NewReader(kafkaBroker, consumerGroup, events.EmployeeCreatedTopic)
	defer employeeCreatedReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveRequestSubmitted(ctx, submittedReader, notificationService, logger)
	go consumer.ConsumeLeaveRequestDecided(ctx, decidedReader, notificationService, logger)
	go consumer.ConsumeEmployeeCreated(ctx, employeeCreatedReader, balanceService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
