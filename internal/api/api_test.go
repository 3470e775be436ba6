package api

import (
	"bytes"
	"context"
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

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/config"
	"github.com/KrikINS/floor-ready/internal/core/eventbus/testbus"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/data/blobs"
	"github.com/KrikINS/floor-ready/internal/data/db"
	"github.com/KrikINS/floor-ready/internal/tracker"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type harness struct {
	srv    *Server
	app    *tracker.App
	tokens *auth.Tokens
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "floorready.db"), db.OpenOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	bs, err := blobs.NewLocalStore(filepath.Join(dir, "blobs"), "http://localhost/files")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	tokens := auth.NewTokens("api-test-secret-0123456789abcdef", time.Hour)
	app := tracker.NewApp(&cfg, database, bs, auth.ContextProvider{}, tokens, testbus.New(t).EventBus, zerolog.Nop())

	srv := New(app, tokens, Options{BodyLimit: 12 << 20, FilesDir: bs.Dir()}, zerolog.Nop())
	return &harness{srv: srv, app: app, tokens: tokens}
}

func (h *harness) member(t *testing.T, name string, role identity.Role) (identity.Member, string) {
	t.Helper()
	m := identity.Member{Name: name, Email: name + "@floorready.test", Role: role, Status: identity.StatusActive}
	require.NoError(t, h.app.Members.Create(context.Background(), &m))
	token, _, err := h.tokens.Issue(m)
	require.NoError(t, err)
	return m, token
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.send(t, req)
}

func (h *harness) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := h.srv.Handler().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestAPI_Authentication(t *testing.T) {
	h := newHarness(t)
	_, token := h.member(t, "ada", identity.RoleAdmin)

	resp, body := h.do(t, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthenticated", decode[errorResponse](t, body).Code)

	resp, _ = h.do(t, http.MethodGet, "/api/tasks", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/tasks", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	resp, body = h.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada", decode[identity.Member](t, body).Name)

	resp, _ = h.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_TaskLifecycle(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.member(t, "ada", identity.RoleAdmin)
	emp, empToken := h.member(t, "eve", identity.RoleEmployee)
	_, otherToken := h.member(t, "olly", identity.RoleEmployee)

	resp, body := h.do(t, http.MethodPost, "/api/tasks", empToken, map[string]any{
		"title":             "Stage lighting",
		"assignee_id":       emp.ID,
		"cost_to_client":    100,
		"billable_quantity": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[task.View](t, body)
	assert.Equal(t, task.StatusPending, created.Status)
	path := "/api/tasks/" + created.ID

	resp, _ = h.do(t, http.MethodPost, path+"/advance", otherToken, map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, path+"/advance", empToken, map[string]any{"target_status": "In Progress"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", decode[errorResponse](t, body).Code)

	resp, _ = h.do(t, http.MethodPost, path+"/advance", empToken, map[string]any{"version": 9})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for range 2 {
		resp, body = h.do(t, http.MethodPost, path+"/advance", empToken, map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	resp, body = h.do(t, http.MethodPut, path+"/fulfillment", empToken, map[string]any{"actual_cost": "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = h.do(t, http.MethodPut, path+"/fulfillment", empToken, map[string]any{"actual_cost": 40, "vendor_name": "Bright Co"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	v := decode[task.View](t, body)
	assert.Equal(t, task.Profit{PerUnit: 60, Net: 180}, v.Profit)

	resp, _ = h.do(t, http.MethodPost, path+"/advance", empToken, map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, path+"/reject", adminToken, map[string]any{"comment": "missing receipt"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, task.StatusInProgress, decode[task.View](t, body).Status)

	resp, _ = h.do(t, http.MethodPost, path+"/advance", empToken, map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, path+"/approve", adminToken, map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	done := decode[task.View](t, body)
	assert.Equal(t, task.StatusCompleted, done.Status)
	assert.Equal(t, 4, done.Progress.Step)

	resp, body = h.do(t, http.MethodGet, path+"/history", empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]task.Event](t, body), 8)

	resp, body = h.do(t, http.MethodGet, "/api/tasks?status=Completed", empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]task.View](t, body), 1)

	resp, _ = h.do(t, http.MethodDelete, path, empToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Validation(t *testing.T) {
	h := newHarness(t)
	_, token := h.member(t, "ada", identity.RoleAdmin)

	resp, body := h.do(t, http.MethodPost, "/api/tasks", token, map[string]any{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", decode[errorResponse](t, body).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = h.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/api/tasks/ghost/assignee", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "assignee_id is required")

	resp, _ = h.do(t, http.MethodPut, "/api/tasks/ghost/assignee", token, map[string]any{"assignee_id": ""})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartUpload(t *testing.T, path, token, name, contentType, attachCtx string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("context", attachCtx))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAPI_Attachments(t *testing.T) {
	h := newHarness(t)
	emp, token := h.member(t, "eve", identity.RoleEmployee)

	resp, body := h.do(t, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Signage", "assignee_id": emp.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	path := "/api/tasks/" + decode[task.View](t, body).ID + "/attachments"

	resp, body = h.send(t, multipartUpload(t, path, token, "notes.txt", "text/plain", "comment", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, _ = h.send(t, multipartUpload(t, path, token, "a.png", "image/png", "submission", pngHeader))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = h.send(t, multipartUpload(t, path, token, "brief.png", "image/png", "creation", pngHeader))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	a := decode[task.Attachment](t, body)
	assert.Equal(t, task.ContextCreation, a.Context)
	assert.Equal(t, "http://localhost/files/"+a.FilePath, a.URL)

	resp, body = h.do(t, http.MethodGet, "/files/"+a.FilePath, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pngHeader, body)
}

func TestAPI_ProfitabilityReport(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.member(t, "ada", identity.RoleAdmin)
	_, empToken := h.member(t, "eve", identity.RoleEmployee)

	resp, _ := h.do(t, http.MethodPost, "/api/tasks", adminToken, map[string]any{"title": "Flowers", "cost_to_client": 50})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/reports/profitability", empToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := h.do(t, http.MethodGet, "/api/reports/profitability", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "profitability-")
	assert.Equal(t, []byte("PK"), body[:2], "xlsx is a zip archive")
}

func TestAPI_Inventory(t *testing.T) {
	h := newHarness(t)
	admin, token := h.member(t, "ada", identity.RoleAdmin)

	item, err := h.app.Inventory.CreateItem(auth.WithActor(context.Background(), ptr(admin.Actor())), tracker.NewItemInput{Name: "Chairs", Stock: 2})
	require.NoError(t, err)

	resp, body := h.do(t, http.MethodPost, "/api/inventory/"+item.ID+"/adjustments", token, map[string]any{"delta": -3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = h.do(t, http.MethodPost, "/api/inventory/"+item.ID+"/adjustments", token, map[string]any{"delta": 3, "reason": "delivery"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = h.do(t, http.MethodGet, "/api/inventory", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]map[string]any](t, body)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0]["stock"])
}

func ptr[T any](v T) *T { return &v }
