package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
	"github.com/go-chi/chi/v5"
)

// previewCap limits how many rows ride along in the upload response. Clients
// page through the rest via the preview endpoint.
const previewCap = 100

// maxUploadBytes caps spreadsheet uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// handleUpload accepts a multipart spreadsheet, parses it into contact rows,
// and registers a parse job. The response carries the first rows inline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	dialCode := s.config.Provider.CountryCode
	if dialCode == "" {
		dialCode = "+234"
	}

	rows, err := ParseSheet(file, dialCode)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := shared.GenerateID()
	s.store.PutUpload(jobID, rows)

	s.logger.Info("spreadsheet parsed", "job", jobID, "rows", len(rows))

	preview := rows
	if len(preview) > previewCap {
		preview = preview[:previewCap]
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"job_id":        jobID,
		"preview_count": len(rows),
		"preview":       preview,
	})
}

// handlePreview returns a page of parsed contact rows for a parse job.
// A limit of zero or below means all remaining rows.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	rows, ok := s.store.GetUpload(jobID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "job not found")
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}

	page := rows[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"preview": page,
	})
}

// sendRequest is the /send request body. Targets takes precedence; job_id
// alone means the whole parse job.
type sendRequest struct {
	JobID       string           `json:"job_id"`
	Message     string           `json:"message"`
	Personalize bool             `json:"personalize"`
	Targets     []models.Contact `json:"targets"`
}

// handleSend validates the request, registers a send job, and starts it on
// the dispatcher. The response returns before any message goes out.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respondWithError(w, http.StatusBadRequest, "message is required")
		return
	}

	targets := req.Targets
	if len(targets) == 0 && req.JobID != "" {
		rows, ok := s.store.GetUpload(req.JobID)
		if !ok {
			respondWithError(w, http.StatusNotFound, "job not found")
			return
		}
		targets = rows
	}
	if len(targets) == 0 {
		respondWithError(w, http.StatusBadRequest, "no targets to send to")
		return
	}

	job := &SendJob{
		ID:          shared.GenerateID(),
		Message:     req.Message,
		Personalize: req.Personalize,
		Targets:     targets,
	}
	s.store.PutSendJob(job)

	// Jobs outlive the request; shutdown waits for them to drain.
	s.dispatcher.Dispatch(context.Background(), job)

	respondWithJSON(w, http.StatusOK, map[string]string{
		"send_job_id": job.ID,
	})
}

// handleProgress returns a point-in-time snapshot of a send job.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sendJobID := chi.URLParam(r, "sendJobID")

	job, ok := s.store.GetSendJob(sendJobID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "send job not found")
		return
	}

	respondWithJSON(w, http.StatusOK, job.Snapshot())
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
