package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/thunderbolt/config"
	"github.com/padraicbc/thunderbolt/models"
)

// Setup opens the database selected by cfg.DBDriver and pings it.
func Setup(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	switch cfg.DBDriver {
	case "mysql":
		sqldb, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		sqldb.SetMaxOpenConns(8)
		db = bun.NewDB(sqldb, mysqldialect.New())
	default:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
		db = bun.NewDB(sqldb, pgdialect.New())
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}

	zap.L().Info("database connected", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// CreateTables creates all tables if they do not exist yet.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.AssistantQuery)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	// Index creation is best effort; mysql has no IF NOT EXISTS for indexes.
	if _, err := db.NewCreateIndex().
		Model((*models.AssistantQuery)(nil)).
		Index("assistant_queries_created_at_idx").
		IfNotExists().
		Column("created_at").
		Exec(ctx); err != nil {
		zap.L().Debug("create index", zap.Error(err))
	}

	return nil
}
