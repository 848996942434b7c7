package app

import (
	"github.com/LamineOzilJr/memoire-master2/internal/auth"
	"github.com/LamineOzilJr/memoire-master2/internal/balance"
	"github.com/LamineOzilJr/memoire-master2/internal/department"
	"github.com/LamineOzilJr/memoire-master2/internal/employee"
	"github.com/LamineOzilJr/memoire-master2/internal/leavetype"
	"github.com/LamineOzilJr/memoire-master2/internal/messaging/kafka"
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"
	"github.com/LamineOzilJr/memoire-master2/internal/notification"
	"github.com/LamineOzilJr/memoire-master2/internal/rbac"
	"github.com/LamineOzilJr/memoire-master2/internal/request"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	counterRepo := counter.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}

	// --- Services ---
	directory := employee.NewDirectory(employeeRepo)
	departmentService := department.NewService(departmentRepo)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, outboxRepo, rdb)
	leaveTypeService := leavetype.NewService(leaveTypeRepo)
	balanceService := balance.NewService(balanceRepo, leaveTypeRepo)
	requestService := request.NewService(db, requestRepo, balanceRepo, outboxRepo, directory)
	notificationService := notification.NewService(notificationRepo, directory, rdb)
	authService := auth.NewService(employeeRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	departmentHandler := department.NewHandler(departmentService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	balanceHandler := balance.NewHandler(balanceService)
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		department.RegisterRoutes(api, departmentHandler, enforcer)
		employee.RegisterRoutes(api, employeeHandler, enforcer)
		leavetype.RegisterRoutes(api, leaveTypeHandler, enforcer)
		balance.RegisterRoutes(api, balanceHandler, enforcer)
		request.RegisterRoutes(api, requestHandler, enforcer, rdb)
		notification.RegisterRoutes(api, notificationHandler, enforcer)
	}

	return nil
}
