package database

import (
	"fmt"
	"time"

	"github.com/colexalia/colexalia-backend/internal/config"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and applies the pool settings.
func Open(cfg config.DatabaseConfig, logLevel gormlogger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// 단일 파일 DB: 쓰기 잠금 경합 방지
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	case "mysql":
		mysqlCfg, err := mysqldriver.ParseDSN(cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("DSN 파싱 실패: %w", err)
		}
		if mysqlCfg.Params == nil {
			mysqlCfg.Params = map[string]string{}
		}
		mysqlCfg.Params["time_zone"] = "'+00:00'"
		return mysql.Open(mysqlCfg.FormatDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
