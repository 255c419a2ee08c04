package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/program-catalog/adapters/cache"
	"github.com/khoahotran/program-catalog/adapters/persistence"
	authUC "github.com/khoahotran/program-catalog/internal/application/usecase/auth"
	categoryUC "github.com/khoahotran/program-catalog/internal/application/usecase/category"
	languageUC "github.com/khoahotran/program-catalog/internal/application/usecase/language"
	programUC "github.com/khoahotran/program-catalog/internal/application/usecase/program"
	searchUC "github.com/khoahotran/program-catalog/internal/application/usecase/search"
	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/auth"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

const testPassword = "e2e_test_password_123"

// directPublisher stands in for Kafka and the worker: it saves the log
// straight away.
type directPublisher struct {
	repo search.LogRepository
}

func (p directPublisher) PublishSearchLog(ctx context.Context, l search.Log) error {
	return p.repo.Save(ctx, &l)
}

type CatalogE2ETestSuite struct {
	suite.Suite
	Router      *gin.Engine
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer

	admin, editor, viewer user.User
}

func (s *CatalogE2ETestSuite) SetupSuite() {
	ctx := context.Background()
	appLogger := logger.NewNopLogger()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}
	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}
	s.dbPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("E2E test failed to connect postgres: %v", err)
	}

	rdContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.rdContainer = rdContainer
	uri, err := rdContainer.ConnectionString(ctx)
	if err != nil {
		s.T().Fatalf("Failed to get redis connection string: %s", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		s.T().Fatalf("Failed to parse redis url: %s", err)
	}
	s.redisClient = redis.NewClient(opts)

	// Users
	userRepo := persistence.NewPostgresUserRepo(s.dbPool)
	hash, _ := auth.HashPassword(testPassword)
	for _, u := range []*user.User{&s.admin, &s.editor, &s.viewer} {
		*u = user.User{ID: uuid.New(), PasswordHash: hash}
	}
	s.admin.Email, s.admin.Username, s.admin.Role = "admin@example.com", "admin", user.RoleAdmin
	s.editor.Email, s.editor.Username, s.editor.Role = "editor@example.com", "editor", user.RoleEditor
	s.viewer.Email, s.viewer.Username, s.viewer.Role = "viewer@example.com", "viewer", user.RoleViewer
	for _, u := range []*user.User{&s.admin, &s.editor, &s.viewer} {
		if err := userRepo.CreateUser(ctx, u); err != nil {
			s.T().Fatalf("E2E test failed to seed user: %v", err)
		}
	}

	// Wiring, as in cmd/server
	programRepo := persistence.NewPostgresProgramRepo(s.dbPool, appLogger)
	categoryRepo := persistence.NewPostgresCategoryRepo(s.dbPool, appLogger)
	languageRepo := persistence.NewPostgresLanguageRepo(s.dbPool, appLogger)
	allocator := persistence.NewPostgresAllocator(s.dbPool, appLogger)
	catalogCache := cache.NewRedisCache(s.redisClient, time.Second, appLogger)
	jwtSvc := auth.NewJWTService("e2e-secret", time.Hour)

	deps := programUC.Deps{
		Programs:   programRepo,
		Categories: categoryRepo,
		Languages:  languageRepo,
		Allocator:  allocator,
		Cache:      catalogCache,
		Assembler: programUC.NewAssembler(categoryRepo, languageRepo, userRepo,
			persistence.NewPostgresMetadataRepo(s.dbPool), appLogger),
		Searcher:   searchUC.NewWindowSearcher(programRepo, searchUC.DefaultWindow),
		SearchLogs: directPublisher{repo: persistence.NewPostgresSearchLogRepo(s.dbPool, appLogger)},
		Logger:     appLogger,
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorMiddleware(appLogger))
	RegisterRoutes(router, Handlers{
		Program:  NewProgramHandler(deps),
		Category: NewCategoryHandler(categoryUC.NewCategoryUseCase(categoryRepo, programRepo, allocator, catalogCache, time.Hour, appLogger)),
		Language: NewLanguageHandler(languageUC.NewLanguageUseCase(languageRepo, programRepo, allocator, catalogCache, time.Hour, appLogger)),
		Auth: NewAuthHandler(
			authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger),
			authUC.NewRefreshUseCase(userRepo, jwtSvc, appLogger),
		),
		Health: NewHealthHandler(map[string]HealthCheck{
			"postgres": s.dbPool.Ping,
			"redis":    func(ctx context.Context) error { return s.redisClient.Ping(ctx).Err() },
		}),
	}, jwtSvc, appLogger)
	s.Router = router
}

func (s *CatalogE2ETestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate redis container: %s", err)
		}
	}
}

func (s *CatalogE2ETestSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.dbPool.Exec(ctx, `TRUNCATE programs, program_metadata, categories, languages, counters, search_logs`)
	s.Require().NoError(err)
	s.Require().NoError(s.redisClient.FlushDB(ctx).Err())
}

func TestCatalogE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode.")
	}
	suite.Run(t, new(CatalogE2ETestSuite))
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total   int  `json:"total"`
		HasNext bool `json:"hasNext"`
	} `json:"pagination"`
	Source string `json:"source"`
}

type programBody struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Category struct {
		Name     string `json:"name"`
		Resolved bool   `json:"resolved"`
	} `json:"category"`
	Creator struct {
		Username string `json:"username"`
	} `json:"creator"`
	ViewCount int64 `json:"viewCount"`
}

func (s *CatalogE2ETestSuite) do(method, path, token string, body any) (int, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

func (s *CatalogE2ETestSuite) login(u user.User) string {
	code, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": u.Email, "password": testPassword})
	s.Require().Equal(http.StatusOK, code)
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &out))
	s.Require().NotEmpty(out.AccessToken)
	return out.AccessToken
}

func (s *CatalogE2ETestSuite) decodePrograms(env envelope) []programBody {
	var items []programBody
	s.Require().NoError(json.Unmarshal(env.Data, &items))
	return items
}

func (s *CatalogE2ETestSuite) Test_Login_Flow() {
	code, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": s.editor.Email, "password": "wrongpassword"})
	s.Equal(http.StatusUnauthorized, code)
	s.False(env.Success)

	token := s.login(s.editor)

	code, env = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"token": token})
	s.Equal(http.StatusOK, code)
	s.True(env.Success)

	code, _ = s.do(http.MethodPost, "/api/programs", "", gin.H{"title": "x"})
	s.Equal(http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/programs", "garbage", nil)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *CatalogE2ETestSuite) Test_Program_Lifecycle() {
	admin := s.login(s.admin)
	editor := s.login(s.editor)

	code, env := s.do(http.MethodPost, "/api/categories", admin, gin.H{"name": "History", "sortOrder": 1})
	s.Require().Equal(http.StatusCreated, code)
	var cat struct {
		ID int64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &cat))

	code, env = s.do(http.MethodPost, "/api/programs", editor, gin.H{"title": "The Silk Road", "categoryId": cat.ID, "tags": []string{"trade"}})
	s.Require().Equal(http.StatusCreated, code)
	var created programBody
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("draft", created.Status)
	s.Equal("History", created.Category.Name)
	s.True(created.Category.Resolved)
	s.Equal("editor", created.Creator.Username)

	// Drafts are hidden from anonymous callers, on the list and by id.
	code, env = s.do(http.MethodGet, "/api/programs", "", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Empty(s.decodePrograms(env))
	code, _ = s.do(http.MethodGet, "/api/programs/"+itoa(created.ID), "", nil)
	s.Equal(http.StatusNotFound, code)

	// The editor sees it; the second read is served from the cache.
	_, env = s.do(http.MethodGet, "/api/programs", editor, nil)
	s.Len(s.decodePrograms(env), 1)
	s.Equal("store", env.Source)
	_, env = s.do(http.MethodGet, "/api/programs", editor, nil)
	s.Equal("cache", env.Source)

	code, _ = s.do(http.MethodPatch, "/api/programs/"+itoa(created.ID), editor, gin.H{"status": "published"})
	s.Require().Equal(http.StatusOK, code)

	_, env = s.do(http.MethodGet, "/api/programs", "", nil)
	items := s.decodePrograms(env)
	s.Require().Len(items, 1)
	s.Equal("published", items[0].Status)
	s.Equal(1, env.Pagination.Total)

	code, _ = s.do(http.MethodPost, "/api/programs/"+itoa(created.ID)+"/increment-view", "", nil)
	s.Equal(http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/programs/search?search=silk", "", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Len(s.decodePrograms(env), 1)

	code, _ = s.do(http.MethodDelete, "/api/categories/"+itoa(cat.ID), admin, nil)
	s.Equal(http.StatusBadRequest, code, "category still referenced")

	code, _ = s.do(http.MethodDelete, "/api/programs/"+itoa(created.ID), editor, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/programs/"+itoa(created.ID), editor, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *CatalogE2ETestSuite) Test_Permissions() {
	viewer := s.login(s.viewer)
	editor := s.login(s.editor)

	code, env := s.do(http.MethodPost, "/api/programs", viewer, gin.H{"title": "nope"})
	s.Equal(http.StatusForbidden, code)
	s.False(env.Success)

	code, _ = s.do(http.MethodPost, "/api/categories", editor, gin.H{"name": "Science"})
	s.Equal(http.StatusForbidden, code)
}

func (s *CatalogE2ETestSuite) Test_BadInput() {
	editor := s.login(s.editor)

	code, _ := s.do(http.MethodGet, "/api/programs?status=bogus", "", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/programs/abc", "", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/programs/search?search=%20", "", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/programs", editor, gin.H{"title": "x", "contentType": "movie"})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/programs", editor, gin.H{"title": "x", "languageId": 999})
	s.Equal(http.StatusBadRequest, code)
}

func (s *CatalogE2ETestSuite) Test_Health() {
	code, env := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, code)
	s.True(env.Success)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
