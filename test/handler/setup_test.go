package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/handler"
	"github.com/docvault/docvault/internal/middleware"
	"github.com/docvault/docvault/internal/repo"
	"github.com/docvault/docvault/internal/service"
	"github.com/docvault/docvault/test/testutil"
)

const testOTPCode = "123456"

type noopSender struct{}

func (noopSender) Send(to, subject, body string) error {
	return nil
}

func setupRouter(t *testing.T) (http.Handler, *sql.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(db)
	docRepo := repo.NewDocumentRepo(db)
	otpRepo := repo.NewOTPRepo(db)
	recipientRepo := repo.NewShareRecipientRepo(db)

	jwtSecret := []byte("test-secret")
	otpProvider := service.NewOTPProvider(config.OTPConfig{Mode: "fixed", FixedCode: testOTPCode})
	authService := service.NewAuthService(userRepo, otpRepo, otpProvider, noopSender{}, jwtSecret, time.Hour)
	documentService := service.NewDocumentService(docRepo, recipientRepo, config.UploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
	})
	shareService := service.NewShareService(docRepo, recipientRepo, userRepo, service.NewShareNotifier(noopSender{}), config.ShareConfig{
		BaseURL:         "http://localhost:5173",
		DefaultTTLHours: 24,
		MaxTTLHours:     720,
	})

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(authService),
		Documents: handler.NewDocumentHandler(documentService),
		Shares:    handler.NewShareHandler(shareService),
		UserRepo:  userRepo,
		JWTSecret: jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, db, cleanup
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var result struct {
		Code int                    `json:"code"`
		Msg  string                 `json:"msg"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result.Code, result.Data
}

// registerVerified walks a user through register + verify-otp and
// returns the auth token from the verify response.
func registerVerified(t *testing.T, router http.Handler, email, aadhaar string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":           "Test User",
		"email":          email,
		"password":       "secret12",
		"aadhaar_number": aadhaar,
		"phone":          "9876543210",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, 0, code, "register failed: %s", resp.Body.String())

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"email": email,
		"otp":   testOTPCode,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	code, data := decodeEnvelope(t, resp)
	require.Equal(t, 0, code, "verify failed: %s", resp.Body.String())
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func uploadDocument(t *testing.T, router http.Handler, token, title, category string) string {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", title))
	require.NoError(t, writer.WriteField("category", category))
	require.NoError(t, writer.WriteField("description", "test document"))
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s.pdf"`, title)},
		"Content-Type":        {"application/pdf"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test payload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	code, data := decodeEnvelope(t, resp)
	require.Equal(t, 0, code, "upload failed: %s", resp.Body.String())
	doc, _ := data["document"].(map[string]interface{})
	require.NotNil(t, doc)
	id, _ := doc["id"].(string)
	require.NotEmpty(t, id)
	return id
}
