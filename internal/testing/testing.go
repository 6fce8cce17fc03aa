// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"

	"github.com/femiolat/blastr/internal/models"
)

// MockService is a test double for services.Service with optional function
// fields. Unset fields return zero values. Call counters let tests assert
// that no request was issued.
type MockService struct {
	UploadFunc   func(ctx context.Context, path string) (string, int, error)
	PreviewFunc  func(ctx context.Context, jobID string, offset, limit int) ([]models.Contact, error)
	SendFunc     func(ctx context.Context, req models.SendRequest) (string, error)
	ProgressFunc func(ctx context.Context, sendJobID string) (models.Progress, error)

	UploadCalls   int
	PreviewCalls  int
	SendCalls     int
	ProgressCalls int
}

func (m *MockService) Upload(ctx context.Context, path string) (string, int, error) {
	m.UploadCalls++
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, path)
	}
	return "", 0, nil
}

func (m *MockService) Preview(ctx context.Context, jobID string, offset, limit int) ([]models.Contact, error) {
	m.PreviewCalls++
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx, jobID, offset, limit)
	}
	return []models.Contact{}, nil
}

func (m *MockService) Send(ctx context.Context, req models.SendRequest) (string, error) {
	m.SendCalls++
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return "", nil
}

func (m *MockService) Progress(ctx context.Context, sendJobID string) (models.Progress, error) {
	m.ProgressCalls++
	if m.ProgressFunc != nil {
		return m.ProgressFunc(ctx, sendJobID)
	}
	return models.Progress{}, nil
}

func (m *MockService) Name() string { return "mock" }

// Contacts builds a deterministic preview sequence for tests.
func Contacts(n int) []models.Contact {
	names := []string{"Ada Obi", "Chinedu Eze", "Funke Akindele", "Ngozi Okafor", "Tunde Bakare"}
	rows := make([]models.Contact, n)
	for i := range rows {
		rows[i] = models.Contact{
			ID:       strconv.Itoa(i),
			Fullname: names[i%len(names)],
			Phone:    fmt.Sprintf("+23480312345%02d", i),
		}
	}
	return rows
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
