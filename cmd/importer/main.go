package main

import (
	"context"
	"database/sql"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/mitchell1972/cafesnearme/internal/adapters/observability"
	redisad "github.com/mitchell1972/cafesnearme/internal/adapters/redis"
	"github.com/mitchell1972/cafesnearme/internal/app"
	"github.com/mitchell1972/cafesnearme/internal/shared"
	mysqlrepo "github.com/mitchell1972/cafesnearme/internal/storage/mysql"
)

// Bulk importer: every argument is a CSV/XLSX path, run through the same
// pipeline as the HTTP import endpoint. Files are processed under a worker
// cap; rows within a file stay strictly sequential.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	files := os.Args[1:]
	if len(files) == 0 {
		log.Fatal().Msg("usage: importer <file.csv|file.xlsx> [...]")
	}
	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN must be set for imports")
	}

	log.Info().Int("files", len(files)).Int("workers", cfg.Workers).Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	imp := app.NewImportService(repo, cache)
	imp.OnRow = observability.ObserveImportRow

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, f := range files {
		f := f

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			defer sem.Release(1)

			data, err := os.ReadFile(file)
			if err != nil {
				log.Warn().Str("file", file).Err(err).Msg("read failed")
				return
			}
			report, err := imp.ImportFile(ctx, file, data)
			if err != nil {
				log.Warn().Str("file", file).Err(err).Msg("import failed")
				return
			}
			log.Info().
				Str("file", file).
				Str("status", report.Status()).
				Int("total", report.TotalRows).
				Int("ok", report.SuccessCount).
				Int("failed", report.FailedCount).
				Msg("import done")
		}(f)
	}

	wg.Wait()
	log.Info().Msg("all imports completed")
}
