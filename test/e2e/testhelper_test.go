package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler"
	pgRepo "github.com/marcos-nsantos/asset-pipeline/internal/adapter/repository/postgres"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/auth"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/database"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/imageproc"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/middleware"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/server"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

const (
	testDBUser     = "testuser"
	testDBPassword = "testpass"
	testDBName     = "testdb"
	testJWTSecret  = "test-secret-key-for-e2e-tests"
	apiBasePath    = "/api/v1"
)

type TestApp struct {
	Server     *httptest.Server
	Pool       *pgxpool.Pool
	Container  testcontainers.Container
	Storage    *storage.LocalStorage
	BaseURL    string
	Token      string
	httpClient *http.Client
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = database.RunMigrations(ctx, pool, getMigrationsPath())
	require.NoError(t, err)

	// The listener exists before the server starts, so signed URLs can point at it.
	ts := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + ts.Listener.Addr().String()

	localStorage, err := storage.NewLocalStorage(config.LocalStorageConfig{
		Root:        t.TempDir(),
		PublicURL:   baseURL + "/files",
		UploadURL:   baseURL + apiBasePath + "/uploads/direct",
		TokenSecret: testJWTSecret,
	}, "assets")
	require.NoError(t, err)

	assetRepo := pgRepo.NewAssetRepo(pool)
	sessions := session.NewMemoryStore()
	jwtSvc := auth.NewJWTService(testJWTSecret, 15*time.Minute)
	processor := imageproc.NewProcessor(imageproc.WithConcurrency(4))
	logger, _ := zap.NewDevelopment()

	uploadSvc := upload.NewService(assetRepo, sessions, localStorage, processor, upload.Options{
		SessionTTL:        30 * time.Minute,
		PresignTTL:        15 * time.Minute,
		Kinds:             []string{"category", "build", "device", "promo", "banner"},
		DefaultFormat:     valueobject.CodecJPEG,
		UploadConcurrency: 4,
		CleanupTimeout:    10 * time.Second,
	}, logger)

	router := server.NewRouter(server.RouterConfig{
		UploadHandler:       handler.NewUploadHandler(uploadSvc),
		AssetHandler:        handler.NewAssetHandler(uploadSvc),
		DirectUploadHandler: handler.NewDirectUploadHandler(localStorage),
		FilesDir:            localStorage.Dir(),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtSvc),
		Logger:              logger,
		Environment:         "test",
	})

	ts.Config.Handler = router.Engine()
	ts.Start()

	token, _, err := jwtSvc.GenerateAccessToken("e2e-admin")
	require.NoError(t, err)

	return &TestApp{
		Server:    ts,
		Pool:      pool,
		Container: pgContainer,
		Storage:   localStorage,
		BaseURL:   ts.URL,
		Token:     token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (app *TestApp) cleanup(t *testing.T) {
	t.Helper()

	app.Server.Close()
	app.Pool.Close()

	ctx := context.Background()
	if err := app.Container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func (app *TestApp) request(method, path string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	fullPath := apiBasePath + path
	req, err := http.NewRequest(method, app.BaseURL+fullPath, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.httpClient.Do(req)
}

func (app *TestApp) get(path string, headers map[string]string) (*http.Response, error) {
	return app.request(http.MethodGet, path, nil, headers)
}

func (app *TestApp) post(path string, body any, headers map[string]string) (*http.Response, error) {
	return app.request(http.MethodPost, path, body, headers)
}

func (app *TestApp) delete(path string, headers map[string]string) (*http.Response, error) {
	return app.request(http.MethodDelete, path, nil, headers)
}

// putTarget sends raw bytes to an upload target returned by the sign endpoint.
func (app *TestApp) putTarget(target map[string]any, data []byte) (*http.Response, error) {
	req, err := http.NewRequest(target["method"].(string), target["url"].(string), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for k, v := range target["headers"].(map[string]any) {
		req.Header.Set(k, v.(string))
	}
	return app.httpClient.Do(req)
}

func (app *TestApp) fetch(url string) (*http.Response, error) {
	return app.httpClient.Get(url)
}

func parseResponse(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if dest != nil {
		err = json.Unmarshal(body, dest)
		require.NoError(t, err, "response body: %s", string(body))
	}
}

func authHeader(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
	}
}

// getMigrationsPath returns the absolute path to the migrations directory
func getMigrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	testDir := filepath.Dir(filename)
	return filepath.Join(testDir, "..", "..", "migrations")
}
