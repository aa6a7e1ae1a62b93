package app

import (
	"database/sql"
	"os"

	"github.com/SeptianSamdani/leave-management-api/internal/auth"
	"github.com/SeptianSamdani/leave-management-api/internal/leave"
	"github.com/SeptianSamdani/leave-management-api/internal/messaging/kafka"
	"github.com/SeptianSamdani/leave-management-api/internal/middleware"
	"github.com/SeptianSamdani/leave-management-api/internal/quota"
	"github.com/SeptianSamdani/leave-management-api/internal/shared/clock"
	"github.com/SeptianSamdani/leave-management-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	clk := clock.System()

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	store, err := storage.NewDiskStore(uploadDir)
	if err != nil {
		return err
	}

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	quotaRepo := quota.NewRepository(db)
	leaveRepo := leave.NewRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	authService := auth.NewService(authRepo, quotaRepo, clk)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, quotaRepo, store, outboxRepo, rdb, clk)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	leaveHandler := leave.NewHandler(leaveService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID(), middleware.ContextLogger(zap.L()))

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
	}

	return nil
}
