//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	achievementRouter "github.com/dapplion/review-royale/internal/achievement/router"
	classifierRouter "github.com/dapplion/review-royale/internal/classifier/router"
	"github.com/dapplion/review-royale/internal/config"
	"github.com/dapplion/review-royale/internal/database/migrate"
	recalcRouter "github.com/dapplion/review-royale/internal/recalc/router"
	repoRouter "github.com/dapplion/review-royale/internal/repo/router"
	repoService "github.com/dapplion/review-royale/internal/repo/service"
	statsRouter "github.com/dapplion/review-royale/internal/stats/router"
)

// E2ETestSuite runs the HTTP API against a real PostgreSQL container and
// a stubbed source API.
type E2ETestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	db          *gorm.DB
	app         *httptest.Server
	sourceStub  *httptest.Server
	httpClient  *http.Client
}

func (s *E2ETestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(s.T(), err, "failed to start PostgreSQL container")
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(s.T(), err, "failed to connect to database")
	s.db = db

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(s.T(), err)
	require.NoError(s.T(), os.Setenv("MIGRATIONS_PATH", migrationsPath))
	require.NoError(s.T(), migrate.Migrate(db), "failed to apply migrations")

	s.sourceStub = httptest.NewServer(newSourceStub())

	logger := zap.NewNop().Sugar()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	syncCfg := config.SyncConfig{
		GitHubToken:  "e2e-token",
		APIBaseURL:   s.sourceStub.URL,
		Interval:     time.Hour,
		LookbackDays: 365,
		MaxAttempts:  2,
		Concurrency:  2,
		HTTPTimeout:  5 * time.Second,
	}
	classifierCfg := config.ClassifierConfig{
		BaseURL:     "http://127.0.0.1:0",
		Model:       "gpt-4o-mini",
		BatchSize:   20,
		HTTPTimeout: time.Second,
	}

	locks := repoService.NewLockRegistry()
	repoRouter.RegisterRoutes(r, db, locks, syncCfg, logger)
	achievementRouter.RegisterRoutes(r, db, logger)
	classifierRouter.RegisterRoutes(r, db, classifierCfg, logger)
	recalcRouter.RegisterRoutes(r, db, locks, syncCfg.Concurrency, logger)
	statsRouter.RegisterRoutes(r, db, logger)

	s.app = httptest.NewServer(r)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}
}

func (s *E2ETestSuite) TearDownSuite() {
	if s.app != nil {
		s.app.Close()
	}
	if s.sourceStub != nil {
		s.sourceStub.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

// newSourceStub serves one merged pull request with an author commit,
// an approving review and two substantive inline comments by reviewer
// "bob", in the shape of the GitHub REST API.
func newSourceStub() http.Handler {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	body := "this swallows the context cancellation, return the error instead"

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, []map[string]any{{
			"number":     7,
			"user":       map[string]string{"login": "alice"},
			"created_at": base,
			"updated_at": base.Add(2 * time.Hour),
			"merged_at":  base.Add(2 * time.Hour),
		}})
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/7/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, []map[string]any{{
			"sha":    "abc123",
			"author": map[string]string{"login": "alice"},
			"commit": map[string]any{"committer": map[string]any{"date": base}},
		}})
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/7/reviews", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, []map[string]any{{
			"id":           900,
			"user":         map[string]string{"login": "bob"},
			"state":        "APPROVED",
			"body":         "",
			"submitted_at": base.Add(time.Hour),
		}})
	})
	mux.HandleFunc("/repos/acme/widgets/pulls/7/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, []map[string]any{
			{"id": 1001, "user": map[string]string{"login": "bob"}, "body": body, "created_at": base.Add(30 * time.Minute)},
			{"id": 1002, "user": map[string]string{"login": "bob"}, "body": body, "created_at": base.Add(40 * time.Minute)},
		})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *E2ETestSuite) postJSON(path string, body any) (*http.Response, []byte) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := s.httpClient.Post(s.app.URL+path, "application/json",
		bytes.NewReader(payload))
	s.Require().NoError(err)
	return s.readBody(resp)
}

func (s *E2ETestSuite) get(path string) (*http.Response, []byte) {
	resp, err := s.httpClient.Get(s.app.URL + path)
	s.Require().NoError(err)
	return s.readBody(resp)
}

func (s *E2ETestSuite) readBody(resp *http.Response) (*http.Response, []byte) {
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, buf
}

func (s *E2ETestSuite) decode(data []byte, v any) {
	s.Require().NoError(json.Unmarshal(data, v),
		fmt.Sprintf("unexpected payload: %s", data))
}
