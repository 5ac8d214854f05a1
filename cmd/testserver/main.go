package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/common/adapters/database"
	"github.com/bitechdev/RASpec/pkg/common/adapters/router"
	"github.com/bitechdev/RASpec/pkg/config"
	"github.com/bitechdev/RASpec/pkg/jsonserver"
	"github.com/bitechdev/RASpec/pkg/logger"
	"github.com/bitechdev/RASpec/pkg/middleware"
	"github.com/bitechdev/RASpec/pkg/testmodels"
)

func main() {
	fmt.Println("RASpec test server starting")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.LogDev)
	defer logger.Sync()

	db, closeDB, err := initDB(cfg)
	if err != nil {
		logger.Error("Failed to initialize database: %+v", err)
		os.Exit(1)
	}
	defer closeDB()

	server := jsonserver.NewServer()
	if err := testmodels.Register(server, db); err != nil {
		logger.Error("Failed to register resources: %v", err)
		os.Exit(1)
	}

	handler := middleware.Chain(
		middleware.Recover,
		middleware.RequestLogger,
		middleware.CORS(middleware.CORSConfig{
			AllowOrigin:   cfg.CORSAllowOrigin,
			ExposeHeaders: []string{jsonserver.HeaderTotalCount},
		}),
	)(newRouter(cfg, server))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server on %s (%s, %s/%s)", cfg.Addr, cfg.Router, cfg.DBBackend, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed: %v", err)
	}
}

func newRouter(cfg *config.Config, server *jsonserver.Server) http.Handler {
	if cfg.Router == config.RouterBunRouter {
		r := router.NewStandardBunRouterAdapter()
		jsonserver.SetupBunRouterRoutes(r, server, cfg.APIPrefix)
		return r.GetBunRouter()
	}

	r := mux.NewRouter()
	jsonserver.SetupMuxRoutes(r, server, cfg.APIPrefix)
	return r
}

func initDB(cfg *config.Config) (common.Database, func(), error) {
	if cfg.DBBackend == config.BackendBun {
		return initBun(cfg)
	}
	return initGorm(cfg)
}

func initGorm(cfg *config.Config) (common.Database, func(), error) {
	level := gormlog.Warn
	if cfg.SQLLog {
		level = gormlog.Info
	}
	newLogger := gormlog.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlog.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, nil, err
	}

	if err := db.AutoMigrate(testmodels.Models()...); err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return database.NewGormAdapter(db), closeDB, nil
}

func initBun(cfg *config.Config) (common.Database, func(), error) {
	var db *bun.DB
	switch cfg.DBDriver {
	case config.DriverPostgres:
		sqldb, err := sql.Open("pgx", cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		// registered by glebarez/sqlite, which pulls in glebarez/go-sqlite
		sqldb, err := sql.Open("sqlite", cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if cfg.SQLLog {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx := context.Background()
	for _, model := range testmodels.Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return database.NewBunAdapter(db), func() { db.Close() }, nil
}
