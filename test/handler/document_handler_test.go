package handler_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/pkg/errcode"
)

func uploadRaw(t *testing.T, router http.Handler, token, title, category, contentType string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", title))
	require.NoError(t, writer.WriteField("category", category))
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, title)},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestDocumentCRUD(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	token := registerVerified(t, router, "docs@example.com", "211122223333")
	docID := uploadDocument(t, router, token, "degree", "education")

	resp := doJSON(t, router, http.MethodGet, "/api/v1/documents/"+docID, token, nil)
	code, data := decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	doc, _ := data["document"].(map[string]interface{})
	require.Equal(t, "degree", doc["title"])
	require.Equal(t, "education", doc["category"])
	require.NotEmpty(t, doc["file_data"])

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents", token, nil)
	code, data = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	require.Equal(t, float64(1), data["count"])
	items, _ := data["items"].([]interface{})
	first, _ := items[0].(map[string]interface{})
	// listings stay light: the blob only comes back on single fetch
	require.Empty(t, first["file_data"])

	resp = doMultipartUpdate(t, router, token, docID, map[string]string{
		"title":       "masters degree",
		"description": "updated",
	})
	code, data = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	doc, _ = data["document"].(map[string]interface{})
	require.Equal(t, "masters degree", doc["title"])
	require.Equal(t, "updated", doc["description"])

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/documents/"+docID, token, nil)
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents/"+docID, token, nil)
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrNotFound), code)
}

func doMultipartUpdate(t *testing.T, router http.Handler, token, docID string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPut, "/api/v1/documents/"+docID, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestDocumentListFilters(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	token := registerVerified(t, router, "filters@example.com", "221122223333")
	uploadDocument(t, router, token, "btech degree", "education")
	uploadDocument(t, router, token, "rail pass", "railway")
	uploadDocument(t, router, token, "voter card", "identity")

	resp := doJSON(t, router, http.MethodGet, "/api/v1/documents?category=railway", token, nil)
	code, data := decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	require.Equal(t, float64(1), data["count"])

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents?category=all", token, nil)
	code, data = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	require.Equal(t, float64(3), data["count"])

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents?search=degree", token, nil)
	code, data = decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	require.Equal(t, float64(1), data["count"])

	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents?category=nonsense", token, nil)
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), code)
}

func TestDocumentUploadValidation(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	token := registerVerified(t, router, "upload@example.com", "231122223333")

	resp := uploadRaw(t, router, token, "notes.txt", "others", "text/plain", []byte("plain text"))
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), code)

	resp = uploadRaw(t, router, token, "big.pdf", "others", "application/pdf", bytes.Repeat([]byte("x"), 6*1024*1024))
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), code)

	resp = uploadRaw(t, router, token, "badcat.pdf", "finance", "application/pdf", []byte("%PDF-1.4"))
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), code)
}

func TestDocumentOwnership(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	ownerToken := registerVerified(t, router, "docowner@example.com", "241122223333")
	otherToken := registerVerified(t, router, "docother@example.com", "251122223333")
	docID := uploadDocument(t, router, ownerToken, "secret", "others")

	resp := doJSON(t, router, http.MethodGet, "/api/v1/documents/"+docID, otherToken, nil)
	code, _ := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrForbidden), code)

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/documents/"+docID, otherToken, nil)
	code, _ = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrForbidden), code)

	// the other user's listing must stay empty
	resp = doJSON(t, router, http.MethodGet, "/api/v1/documents", otherToken, nil)
	code, data := decodeEnvelope(t, resp)
	require.Equal(t, 0, code)
	require.Equal(t, float64(0), data["count"])
}
