package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"vobject/src-server/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config      *Config
	RawDB       *sql.DB
	BunDB       *bun.DB
	MetricChans *Metric

	// receives SIGINT/SIGTERM, or a manual close when the HTTP server dies
	AppCloseSignalChan chan os.Signal

	gracefulShutdownMu    sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState(config *Config) (*AppState, error) {
	as := &AppState{
		Config:             config,
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	// database
	dsn := config.GetDatabasePath()
	if dsn != ":memory:" {
		dsn = "file:" + dsn + "?mode=rwc"
	}
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("NewAppState: cannot open sqlite database: %w", err)
	}
	if config.GetDatabasePath() == ":memory:" {
		// every connection would otherwise get its own empty database
		as.RawDB.SetMaxOpenConns(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		as.RawDB.Close()
		return nil, fmt.Errorf("NewAppState: %w", err)
	}
	slog.Debug("database ready", "path", config.GetDatabasePath())

	return as, nil
}

// Get a channel that is closed when the app shuts down
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return &ch
}

// Notify every background worker, then close the database
func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownMu.Unlock()

	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
