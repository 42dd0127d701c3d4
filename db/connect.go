package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	models "github.com/workmate-ai/workmate/dbmodels"
)

var DB *gorm.DB

// Connect opens the store and runs migrations. driver is "postgres" or
// "sqlite"; dsn is the driver connection string (a file path or ":memory:"
// for sqlite). The returned handle is also kept in the package-level DB for
// callers that have no injected handle.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		if dsn == "" {
			dsn = "workmate.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}

	DB = conn
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.ClockRecord{},
		&models.Task{},
		&models.TaskComment{},
		&models.Report{},
		&models.AgentAction{},
		&models.CompanyDocument{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
