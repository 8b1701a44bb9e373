package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	server "github.com/mitchell1972/cafesnearme/internal/adapters/http_server"
	"github.com/mitchell1972/cafesnearme/internal/adapters/observability"
	redisad "github.com/mitchell1972/cafesnearme/internal/adapters/redis"
	"github.com/mitchell1972/cafesnearme/internal/app"
	"github.com/mitchell1972/cafesnearme/internal/domain"
	"github.com/mitchell1972/cafesnearme/internal/shared"
	mysqlrepo "github.com/mitchell1972/cafesnearme/internal/storage/mysql"
	"github.com/mitchell1972/cafesnearme/internal/storage/noop"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// store: live MySQL when a DSN is configured, no-op otherwise so the
	// HTTP surface stays runnable in local development
	var repo domain.CafeRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	} else {
		repo = noop.New()
	}

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	search := app.NewSearchService(repo)
	imp := app.NewImportService(repo, cache)
	imp.OnRow = observability.ObserveImportRow

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:       q,
		S:       search,
		I:       imp,
		Uploads: rate.NewLimiter(rate.Limit(cfg.UploadRPS), cfg.UploadRPS),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
