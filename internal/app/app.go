package app

import (
	"os"

	"github.com/SeptianSamdani/leave-management-api/internal/auth"
	"github.com/SeptianSamdani/leave-management-api/internal/leave"
	"github.com/SeptianSamdani/leave-management-api/internal/messaging/kafka"
	"github.com/SeptianSamdani/leave-management-api/internal/quota"
	"github.com/SeptianSamdani/leave-management-api/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp wires infrastructure, runs migrations and registers every
// module's routes on the router.
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

	models := []any{
		&auth.User{},
		&quota.LeaveQuota{},
		&leave.LeaveRequest{},
	}
	models = append(models, kafka.MigrationModels()...)
	if err := gormDB.AutoMigrate(models...); err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	return registerModules(router, db, gormDB, rdb)
}
