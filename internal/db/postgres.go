package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/types"
	"github.com/ytfeed/ytfeed-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "ytfeed", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserData{},
		&types.VideoData{},
		&types.CachedVideoData{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	if err := s.db.Exec(`ALTER TABLE "user_data" DROP CONSTRAINT IF EXISTS "fk_user_data_google_id"`).Error; err != nil {
		return fmt.Errorf("failed to drop fk_user_data_google_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "user_data"
		ADD CONSTRAINT "fk_user_data_google_id"
		FOREIGN KEY ("google_id")
		REFERENCES "user"("google_id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_user_data_google_id: %w", err)
	}
	if err := s.db.Exec(`ALTER TABLE "user_data" DROP CONSTRAINT IF EXISTS "fk_user_data_video_id"`).Error; err != nil {
		return fmt.Errorf("failed to drop fk_user_data_video_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "user_data"
		ADD CONSTRAINT "fk_user_data_video_id"
		FOREIGN KEY ("video_id")
		REFERENCES "video_data"("video_id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_user_data_video_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
