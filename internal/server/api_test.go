package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records delivered messages and fails numbers on a denylist.
type fakeSender struct {
	mu     sync.Mutex
	sent   []string
	bodies map[string]string
	reject map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{bodies: map[string]string{}, reject: map[string]bool{}}
}

func (f *fakeSender) Send(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject[to] {
		return errors.New("gateway rejected number")
	}
	f.sent = append(f.sent, to)
	f.bodies[to] = body
	return nil
}

func (f *fakeSender) delivered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.sent...)
}

func (f *fakeSender) bodyFor(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[to]
}

func setupTestServer(t *testing.T) (*Server, *fakeSender) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Provider.RatePerSec = 1000

	sender := newFakeSender()
	srv := New(config, sender, shared.NewLogger(io.Discard))
	return srv, sender
}

func uploadSheet(t *testing.T, router http.Handler, csv string) string {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "contacts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)
	return resp.JobID
}

func TestHandleUpload(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	t.Run("parses and previews the spreadsheet", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, _ := writer.CreateFormFile("file", "contacts.csv")
		part.Write([]byte("name,phone\nAda Obi,08031234567\nChinedu Eze,08098765432\n"))
		writer.Close()

		req := httptest.NewRequest("POST", "/upload", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			JobID        string           `json:"job_id"`
			PreviewCount int              `json:"preview_count"`
			Preview      []models.Contact `json:"preview"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.JobID)
		assert.Equal(t, 2, resp.PreviewCount)
		require.Len(t, resp.Preview, 2)
		assert.Equal(t, "+2348031234567", resp.Preview[0].Phone)
	})

	t.Run("missing file field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/upload", strings.NewReader("not multipart"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unusable spreadsheet", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, _ := writer.CreateFormFile("file", "contacts.csv")
		part.Write([]byte("foo,bar\n1,2\n"))
		writer.Close()

		req := httptest.NewRequest("POST", "/upload", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	})
}

func TestHandlePreview(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	var sheet strings.Builder
	sheet.WriteString("name,phone\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&sheet, "Contact %d,0803123450%d\n", i, i)
	}
	jobID := uploadSheet(t, router, sheet.String())

	decode := func(t *testing.T, rr *httptest.ResponseRecorder) []models.Contact {
		t.Helper()
		var resp struct {
			Preview []models.Contact `json:"preview"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp.Preview
	}

	t.Run("returns all rows by default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/preview/"+jobID, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode(t, rr), 5)
	})

	t.Run("pages with offset and limit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/preview/"+jobID+"?offset=2&limit=2", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		page := decode(t, rr)
		require.Len(t, page, 2)
		assert.Equal(t, "2", page[0].ID)
		assert.Equal(t, "3", page[1].ID)
	})

	t.Run("offset past the end returns an empty page", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/preview/"+jobID+"?offset=99", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode(t, rr))
	})

	t.Run("unknown job", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/preview/nope", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleSend(t *testing.T) {
	t.Run("sends to explicit targets with personalization", func(t *testing.T) {
		srv, sender := setupTestServer(t)
		router := srv.Router()

		payload := `{
			"message": "Hello {name}!",
			"personalize": true,
			"targets": [
				{"id": "0", "fullname": "Ada Obi", "phone": "+2348031234567"},
				{"id": "1", "fullname": "Chinedu Eze", "phone": "+2348098765432"}
			]
		}`
		req := httptest.NewRequest("POST", "/send", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp struct {
			SendJobID string `json:"send_job_id"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.SendJobID)

		srv.dispatcher.Wait()

		assert.ElementsMatch(t, []string{"+2348031234567", "+2348098765432"}, sender.delivered())
		assert.Equal(t, "Hello Ada!", sender.bodyFor("+2348031234567"))
		assert.Equal(t, "Hello Chinedu!", sender.bodyFor("+2348098765432"))

		job, ok := srv.store.GetSendJob(resp.SendJobID)
		require.True(t, ok)
		snapshot := job.Snapshot()
		assert.Equal(t, models.StatusCompleted, snapshot.Status)
		assert.Equal(t, 100, snapshot.Percent)
		assert.Equal(t, 2, snapshot.Sent)
		assert.Equal(t, 0, snapshot.Failed)
	})

	t.Run("job_id sends to the whole parse job", func(t *testing.T) {
		srv, sender := setupTestServer(t)
		router := srv.Router()

		jobID := uploadSheet(t, router, "name,phone\nAda Obi,08031234567\nChinedu Eze,08098765432\n")

		payload := fmt.Sprintf(`{"job_id": %q, "message": "hello"}`, jobID)
		req := httptest.NewRequest("POST", "/send", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		srv.dispatcher.Wait()
		assert.Len(t, sender.delivered(), 2)
	})

	t.Run("failed deliveries are counted, not fatal", func(t *testing.T) {
		srv, sender := setupTestServer(t)
		sender.reject["+2348098765432"] = true
		router := srv.Router()

		payload := `{
			"message": "hello",
			"targets": [
				{"id": "0", "fullname": "Ada Obi", "phone": "+2348031234567"},
				{"id": "1", "fullname": "Chinedu Eze", "phone": "+2348098765432"}
			]
		}`
		req := httptest.NewRequest("POST", "/send", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			SendJobID string `json:"send_job_id"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		srv.dispatcher.Wait()

		job, _ := srv.store.GetSendJob(resp.SendJobID)
		snapshot := job.Snapshot()
		assert.Equal(t, models.StatusCompleted, snapshot.Status)
		assert.Equal(t, 1, snapshot.Sent)
		assert.Equal(t, 1, snapshot.Failed)
		assert.Equal(t, 100, snapshot.Percent)
	})

	t.Run("all failures end the job failed", func(t *testing.T) {
		srv, sender := setupTestServer(t)
		sender.reject["+2348031234567"] = true
		router := srv.Router()

		payload := `{
			"message": "hello",
			"targets": [{"id": "0", "fullname": "Ada Obi", "phone": "+2348031234567"}]
		}`
		req := httptest.NewRequest("POST", "/send", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			SendJobID string `json:"send_job_id"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		srv.dispatcher.Wait()

		job, _ := srv.store.GetSendJob(resp.SendJobID)
		assert.Equal(t, models.StatusFailed, job.Snapshot().Status)
	})

	t.Run("blank message", func(t *testing.T) {
		srv, _ := setupTestServer(t)
		router := srv.Router()

		req := httptest.NewRequest("POST", "/send", strings.NewReader(`{"message": "  ", "targets": [{"id":"0","fullname":"A","phone":"+1"}]}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no targets", func(t *testing.T) {
		srv, _ := setupTestServer(t)
		router := srv.Router()

		req := httptest.NewRequest("POST", "/send", strings.NewReader(`{"message": "hello"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown job id", func(t *testing.T) {
		srv, _ := setupTestServer(t)
		router := srv.Router()

		req := httptest.NewRequest("POST", "/send", strings.NewReader(`{"message": "hello", "job_id": "nope"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleProgress(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	t.Run("unknown send job", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/progress/nope", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("pending job reports zero progress", func(t *testing.T) {
		job := &SendJob{ID: "send-1", Message: "hi", Targets: []models.Contact{{ID: "0", Fullname: "A", Phone: "+1"}}}
		srv.store.PutSendJob(job)

		req := httptest.NewRequest("GET", "/progress/send-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var progress models.Progress
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
		assert.Equal(t, models.StatusPending, progress.Status)
		assert.Equal(t, 0, progress.Percent)
		assert.Equal(t, 1, progress.Total)
	})
}
