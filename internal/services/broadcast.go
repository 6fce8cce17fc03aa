// Broadcast backend implementation of [Service]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:5000"

// BroadcastService implements the Service interface against the broadcast backend.
type BroadcastService struct {
	baseURL    string
	httpClient *http.Client
}

// NewBroadcastService creates a new broadcast backend client.
func NewBroadcastService(baseURL string, client *http.Client) *BroadcastService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &BroadcastService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the service name.
func (b *BroadcastService) Name() string {
	return "Broadcast"
}

// decodeAPIError turns a non-2xx response into an error carrying the
// server-provided message, falling back to a generic label.
func decodeAPIError(statusCode int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}

	msg := "unknown error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}

	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, msg)
	}

	return fmt.Errorf("%w (status %d): %s", shared.ErrAPIRequest, statusCode, msg)
}

func (b *BroadcastService) do(req *http.Request, result any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Upload submits the spreadsheet at path as the multipart form field "file".
//
// Calls POST /upload on the backend.
func (b *BroadcastService) Upload(ctx context.Context, path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", 0, fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/upload", &buf)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploadResp struct {
		JobID        string `json:"job_id"`
		PreviewCount int    `json:"preview_count"`
	}
	if err := b.do(req, &uploadResp); err != nil {
		return "", 0, err
	}

	if uploadResp.JobID == "" {
		return "", 0, fmt.Errorf("%w: response missing job_id", shared.ErrAPIRequest)
	}

	return uploadResp.JobID, uploadResp.PreviewCount, nil
}

// Preview retrieves parsed contact rows for an upload job.
//
// Calls GET /preview/{job_id} on the backend.
func (b *BroadcastService) Preview(ctx context.Context, jobID string, offset, limit int) ([]models.Contact, error) {
	endpoint := fmt.Sprintf("%s/preview/%s", b.baseURL, url.PathEscape(jobID))

	query := url.Values{}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var previewResp struct {
		Preview []models.Contact `json:"preview"`
	}
	if err := b.do(req, &previewResp); err != nil {
		return nil, err
	}

	return previewResp.Preview, nil
}

// Send submits a message and target list, returning the send job id.
//
// Calls POST /send on the backend.
func (b *BroadcastService) Send(ctx context.Context, sendReq models.SendRequest) (string, error) {
	payload, err := json.Marshal(sendReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var sendResp struct {
		SendJobID string `json:"send_job_id"`
	}
	if err := b.do(req, &sendResp); err != nil {
		return "", err
	}

	if sendResp.SendJobID == "" {
		return "", fmt.Errorf("%w: response missing send_job_id", shared.ErrAPIRequest)
	}

	return sendResp.SendJobID, nil
}

// Progress retrieves the current status of a send job.
//
// Calls GET /progress/{send_job_id} on the backend.
func (b *BroadcastService) Progress(ctx context.Context, sendJobID string) (models.Progress, error) {
	endpoint := fmt.Sprintf("%s/progress/%s", b.baseURL, url.PathEscape(sendJobID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Progress{}, fmt.Errorf("failed to create request: %w", err)
	}

	var progress models.Progress
	if err := b.do(req, &progress); err != nil {
		return models.Progress{}, err
	}

	return progress, nil
}
