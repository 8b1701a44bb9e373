//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "github.com/mitchell1972/cafesnearme/internal/adapters/http_server"
	redisad "github.com/mitchell1972/cafesnearme/internal/adapters/redis"
	"github.com/mitchell1972/cafesnearme/internal/app"
	"github.com/mitchell1972/cafesnearme/internal/domain"
	mysqlrepo "github.com/mitchell1972/cafesnearme/internal/storage/mysql"
)

// ---------- helpers ----------
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_ImportThenSearch(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=cafes",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "cafes")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Real cache on an embedded redis
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	repo := mysqlrepo.New(db)
	q := app.NewQueryService(repo, cache, time.Minute)
	search := app.NewSearchService(repo)
	imp := app.NewImportService(repo, cache)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q, S: search, I: imp})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Seed through the repo, read through the full HTTP stack
	seed := domain.Cafe{
		Slug:      "beanery-london-nw1-8qp",
		Name:      "Beanery",
		Address:   "1 High St",
		Postcode:  "NW1 8QP",
		City:      "London",
		Lat:       51.5410,
		Lng:       -0.1430,
		Amenities: []string{"wifi"},
		Rating:    pfloat(4.5),
	}
	if err := repo.UpsertCafe(context.Background(), seed); err != nil {
		t.Fatalf("UpsertCafe: %v", err)
	}

	res, err := http.Get(ts.URL + "/v1/cafes/beanery-london-nw1-8qp")
	if err != nil {
		t.Fatalf("GET cafe: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, body)
	}
	var got domain.Cafe
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode cafe: %v", err)
	}
	if got.Name != "Beanery" || got.City != "London" {
		t.Fatalf("unexpected cafe: %+v", got)
	}

	// Geographic search near the seeded record; NW1 resolves via the
	// postcode table so a bare postcode query works too.
	res, err = http.Get(ts.URL + "/v1/cafes/search?lat=51.5410&lng=-0.1430&radius=5")
	if err != nil {
		t.Fatalf("GET search: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("search status %d", res.StatusCode)
	}
	var page domain.SearchPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Cafes) != 1 || page.Cafes[0].Slug != seed.Slug {
		t.Fatalf("unexpected search page: %+v", page)
	}
	if page.Cafes[0].Distance == nil || *page.Cafes[0].Distance != 0 {
		t.Fatalf("expected zero distance, got %+v", page.Cafes[0].Distance)
	}
}
