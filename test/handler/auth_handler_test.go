package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/pkg/errcode"
)

func TestAuthRegisterVerifyLogin(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":           "Asha",
		"email":          "asha@example.com",
		"password":       "secret12",
		"aadhaar_number": "123412341234",
		"phone":          "9000000001",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, 0, code)

	// login is blocked until the OTP is verified
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "asha@example.com",
		"password": "secret12",
	})
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrNotVerified), code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"email": "asha@example.com",
		"otp":   "000000",
	})
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"email": "asha@example.com",
		"otp":   testOTPCode,
	})
	code, data := decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	require.NotEmpty(t, data["token"])

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "asha@example.com",
		"password": "secret12",
	})
	code, data = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", token, nil)
	code, data = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	user, _ := data["user"].(map[string]interface{})
	require.Equal(t, "asha@example.com", user["email"])
}

func TestAuthDuplicateRegister(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	registerVerified(t, router, "dupe@example.com", "123512351235")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":           "Dupe",
		"email":          "dupe@example.com",
		"password":       "secret12",
		"aadhaar_number": "999912341234",
		"phone":          "9000000002",
	})
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrConflict), code)

	// a fresh email with an already-registered aadhaar is also a conflict
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":           "Dupe2",
		"email":          "dupe2@example.com",
		"password":       "secret12",
		"aadhaar_number": "123512351235",
		"phone":          "9000000003",
	})
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrConflict), code)
}

func TestAuthRegisterValidation(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	cases := []map[string]string{
		{"name": "A", "email": "not-an-email", "password": "secret12", "aadhaar_number": "123612361236", "phone": "9000000004"},
		{"name": "A", "email": "short@example.com", "password": "abc", "aadhaar_number": "123612361236", "phone": "9000000004"},
		{"name": "A", "email": "aad@example.com", "password": "secret12", "aadhaar_number": "12345", "phone": "9000000004"},
		{"name": "A", "email": "phone@example.com", "password": "secret12", "aadhaar_number": "123612361236", "phone": "12"},
	}
	for _, body := range cases {
		resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
		code, _ := decodeEnvelope(t, resp)
		require.Equal(t, int(errcode.ErrInvalid), code, "body: %v", body)
	}
}

func TestAuthResendCooldown(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":           "Cool",
		"email":          "cooldown@example.com",
		"password":       "secret12",
		"aadhaar_number": "123712371237",
		"phone":          "9000000005",
	})
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, 0, code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/resend-otp", "", map[string]string{
		"email": "cooldown@example.com",
	})
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrTooMany), code)
}

func TestAuthBadCredentials(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	registerVerified(t, router, "creds@example.com", "123812381238")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "creds@example.com",
		"password": "wrong-pass",
	})
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrUnauthorized), code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret12",
	})
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrUnauthorized), code)
}

func TestAuthProtectedRoutesRequireToken(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrUnauthorized), code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents", "garbage-token", nil)
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrUnauthorized), code)
}
