package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/medtrack/internal/db"
	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/realtime"
	"github.com/terraincognita07/medtrack/internal/services"
	"github.com/terraincognita07/medtrack/internal/storage"
)

const (
	testSecretKey     = "test-secret-key-0123456789abcdef"
	testPassword      = "StrongPass1"
	testPhotoMaxBytes = 1024
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	app     *fiber.App
	handler *Handler
	repos   *db.Repositories
	photos  *storage.MemoryPhotoStore
	hub     *realtime.Hub
}

type testEnvOptions struct {
	enableCSRF    bool
	metrics       Metrics
	metricsSource MetricsSource
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, testEnvOptions{})
}

func newTestEnvWithOptions(t *testing.T, options testEnvOptions) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "medtrack-api-test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	photos := storage.NewMemoryPhotoStore(testPhotoMaxBytes)
	hub := realtime.NewHub()
	clock := func() time.Time { return testNow }

	intakes := services.NewIntakeService(repos.IntakeRecords, photos, time.UTC, services.IntakeServiceOptions{
		Notifier: realtime.NewNotifier(hub, nil, zerolog.Nop()),
		Now:      clock,
	})
	links := services.NewLinkService(repos.Users, repos.CaretakerLinks)

	handler, err := NewHandler(Dependencies{
		Auth:          services.NewAuthService(repos.Users),
		Intakes:       intakes,
		Links:         links,
		Summaries:     services.NewSummaryService(intakes, repos.Users, links, nil, time.UTC),
		Photos:        photos,
		Hub:           hub,
		Metrics:       options.metrics,
		MetricsSource: options.metricsSource,
	}, Options{
		SecretKey:         testSecretKey,
		PhotoMaxBytes:     testPhotoMaxBytes,
		Logger:            zerolog.Nop(),
		HeartbeatInterval: time.Hour,
		Now:               clock,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	t.Cleanup(handler.CloseStreams)

	app := NewApp(handler, AppOptions{Logger: zerolog.Nop(), EnableCSRF: options.enableCSRF})
	return &testEnv{app: app, handler: handler, repos: repos, photos: photos, hub: hub}
}

func (env *testEnv) do(t *testing.T, method string, path string, cookie string, body any) *http.Response {
	t.Helper()

	request := jsonRequest(t, method, path, body)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	return env.send(t, request)
}

func jsonRequest(t *testing.T, method string, path string, body any) *http.Request {
	t.Helper()

	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode request body: %v", err)
	}
	request := httptest.NewRequest(method, path, bytes.NewReader(encoded))
	request.Header.Set("Content-Type", "application/json")
	return request
}

func (env *testEnv) send(t *testing.T, request *http.Request) *http.Response {
	t.Helper()

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

// register creates an account through the API and returns its auth cookie
// pair together with the stored user.
func (env *testEnv) register(t *testing.T, email string, role string, displayName string) (string, models.User) {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":            email,
		"password":         testPassword,
		"confirm_password": testPassword,
		"role":             role,
		"display_name":     displayName,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, response.StatusCode)
	}

	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("register %s: expected auth cookie", email)
	}

	user, found, err := env.repos.Users.FindByNormalizedEmail(email)
	if err != nil || !found {
		t.Fatalf("load registered user %s: found=%v err=%v", email, found, err)
	}
	return cookiePair(cookie), user
}

func (env *testEnv) link(t *testing.T, caretakerCookie string, patientEmail string) {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/links", caretakerCookie, fiber.Map{"email": patientEmail})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("link %s: expected 201, got %d", patientEmail, response.StatusCode)
	}
}

func multipartIntakeRequest(t *testing.T, path string, cookie string, fields map[string]string, contentType string, photo []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if photo != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="photo"; filename="proof"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create photo part: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("write photo part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, path, &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Cookie", cookie)
	return request
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func cookiePair(cookie *http.Cookie) string {
	return cookie.Name + "=" + cookie.Value
}

func joinCookieHeader(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, "; ")
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, response, &payload)
	message, _ := payload["error"].(string)
	return message
}
