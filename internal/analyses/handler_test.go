package analyses_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/Abhishek-Sahu25/Echo-check/internal/analyses"
	"github.com/Abhishek-Sahu25/Echo-check/internal/reports"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/middleware"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/pagination"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/routes"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/storage"
)

// fakeSystem is an in-memory analyses.System for handler tests.
type fakeSystem struct {
	records     map[uuid.UUID]*analyses.Analysis
	submitAs    analyses.Status
	reportData  []byte
	spectrogram []byte
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		records:  make(map[uuid.UUID]*analyses.Analysis),
		submitAs: analyses.StatusCompleted,
	}
}

func (f *fakeSystem) Handler(maxUploadSize int64) *analyses.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	return analyses.NewHandler(f, logger, cfg, maxUploadSize)
}

func (f *fakeSystem) List(
	ctx context.Context,
	owner uuid.UUID,
	page pagination.PageRequest,
	filters analyses.Filters,
) (*pagination.PageResult[analyses.Analysis], error) {
	matched := []analyses.Analysis{}
	for _, a := range f.records {
		if a.OwnerID == owner {
			matched = append(matched, *a)
		}
	}
	result := pagination.NewPageResult(matched, len(matched), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) Find(ctx context.Context, owner, id uuid.UUID) (*analyses.Analysis, error) {
	a, ok := f.records[id]
	if !ok || a.OwnerID != owner {
		return nil, analyses.ErrNotFound
	}
	return a, nil
}

func (f *fakeSystem) Submit(ctx context.Context, owner uuid.UUID, cmd analyses.SubmitCommand) (*analyses.Analysis, error) {
	a := &analyses.Analysis{
		ID:        uuid.New(),
		OwnerID:   owner,
		FileName:  cmd.FileName,
		FileType:  string(cmd.Classification.Modality),
		FileSize:  int64(len(cmd.Data)),
		Status:    f.submitAs,
		Anomalies: []scoring.Anomaly{},
	}
	if f.submitAs == analyses.StatusCompleted {
		score := 80.0
		a.TruthScore = &score
		a.AudioScore = &score
	}
	f.records[a.ID] = a
	return a, nil
}

func (f *fakeSystem) Delete(ctx context.Context, owner, id uuid.UUID) error {
	a, ok := f.records[id]
	if !ok || a.OwnerID != owner {
		return analyses.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeSystem) Report(ctx context.Context, owner, id uuid.UUID) ([]byte, error) {
	a, ok := f.records[id]
	if !ok || a.OwnerID != owner {
		return nil, analyses.ErrNotFound
	}
	if a.Status != analyses.StatusCompleted {
		return nil, reports.ErrNotCompleted
	}
	return f.reportData, nil
}

func (f *fakeSystem) Spectrogram(ctx context.Context, owner, id uuid.UUID) (*storage.DownloadResult, error) {
	a, ok := f.records[id]
	if !ok || a.OwnerID != owner {
		return nil, analyses.ErrNotFound
	}
	if f.spectrogram == nil {
		return nil, analyses.ErrNoSpectrogram
	}
	return &storage.DownloadResult{
		Body:          io.NopCloser(bytes.NewReader(f.spectrogram)),
		ContentType:   "image/png",
		ContentLength: int64(len(f.spectrogram)),
	}, nil
}

func testServer(sys *fakeSystem, maxUploadSize int64) http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(maxUploadSize).Routes())
	return middleware.Owner()(mux)
}

func seedRecord(sys *fakeSystem, owner uuid.UUID, status analyses.Status) *analyses.Analysis {
	a := &analyses.Analysis{
		ID:        uuid.New(),
		OwnerID:   owner,
		FileName:  "clip.wav",
		FileType:  "audio",
		FileSize:  1024,
		Status:    status,
		Anomalies: []scoring.Anomaly{},
	}
	if status == analyses.StatusCompleted {
		score := 75.0
		a.TruthScore = &score
		a.AudioScore = &score
	}
	sys.records[a.ID] = a
	return a
}

// wavFixture builds a minimal 16-bit mono PCM WAV stream that passes
// content-signature classification.
func wavFixture() []byte {
	samples := make([]int16, 64)
	dataLen := len(samples) * 2
	buf := make([]byte, 0, 44+dataLen)

	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataLen))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...)
	buf = append(buf, u16(1)...)
	buf = append(buf, u32(16000)...)
	buf = append(buf, u32(32000)...)
	buf = append(buf, u16(2)...)
	buf = append(buf, u16(16)...)
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataLen))...)
	buf = append(buf, make([]byte, dataLen)...)

	return buf
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("part write error = %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestMissingOwnerHeader(t *testing.T) {
	server := testServer(newFakeSystem(), 1<<20)

	req := httptest.NewRequest("GET", "/analyses", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestOwnerIsolation(t *testing.T) {
	sys := newFakeSystem()
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	other := uuid.New()
	record := seedRecord(sys, owner, analyses.StatusCompleted)

	req := httptest.NewRequest("GET", "/analyses/"+record.ID.String(), nil)
	req.Header.Set(middleware.OwnerHeader, other.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-owner read status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest("GET", "/analyses/"+record.ID.String(), nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("owner read status = %d, want 200", rec.Code)
	}
}

func TestSubmitCompleted(t *testing.T) {
	sys := newFakeSystem()
	server := testServer(sys, 1<<20)

	body, contentType := multipartBody(t, "voice.wav", wavFixture())
	req := httptest.NewRequest("POST", "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.OwnerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var a analyses.Analysis
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if a.Status != analyses.StatusCompleted {
		t.Errorf("Status = %s, want completed", a.Status)
	}
	if a.FileType != "audio" {
		t.Errorf("FileType = %q, want audio", a.FileType)
	}
	if a.TruthScore == nil {
		t.Error("TruthScore = nil, want set on completed record")
	}
}

func TestSubmitFailedAnalysis(t *testing.T) {
	sys := newFakeSystem()
	sys.submitAs = analyses.StatusFailed
	server := testServer(sys, 1<<20)

	body, contentType := multipartBody(t, "voice.wav", wavFixture())
	req := httptest.NewRequest("POST", "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.OwnerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var a analyses.Analysis
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if a.Status != analyses.StatusFailed {
		t.Errorf("Status = %s, want failed record in body", a.Status)
	}
}

func TestSubmitUnsupportedMedia(t *testing.T) {
	server := testServer(newFakeSystem(), 1<<20)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text, not media"))
	req := httptest.NewRequest("POST", "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.OwnerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestSubmitOversized(t *testing.T) {
	server := testServer(newFakeSystem(), 256)

	body, contentType := multipartBody(t, "big.wav", make([]byte, 4096))
	req := httptest.NewRequest("POST", "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.OwnerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestFindInvalidID(t *testing.T) {
	server := testServer(newFakeSystem(), 1<<20)

	req := httptest.NewRequest("GET", "/analyses/not-a-uuid", nil)
	req.Header.Set(middleware.OwnerHeader, uuid.New().String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	sys := newFakeSystem()
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	record := seedRecord(sys, owner, analyses.StatusCompleted)

	req := httptest.NewRequest("DELETE", "/analyses/"+record.ID.String(), nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest("DELETE", "/analyses/"+record.ID.String(), nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestReportCompleted(t *testing.T) {
	sys := newFakeSystem()
	sys.reportData = []byte("%PDF-1.4 fake report body")
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	record := seedRecord(sys, owner, analyses.StatusCompleted)

	req := httptest.NewRequest("GET", "/analyses/"+record.ID.String()+"/report", nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), sys.reportData) {
		t.Error("report body does not match stored data")
	}
}

func TestReportNotCompleted(t *testing.T) {
	sys := newFakeSystem()
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	record := seedRecord(sys, owner, analyses.StatusFailed)

	req := httptest.NewRequest("GET", "/analyses/"+record.ID.String()+"/report", nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSpectrogram(t *testing.T) {
	sys := newFakeSystem()
	sys.spectrogram = []byte{0x89, 'P', 'N', 'G'}
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	record := seedRecord(sys, owner, analyses.StatusCompleted)

	req := httptest.NewRequest("GET", "/analyses/"+record.ID.String()+"/spectrogram", nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
}

func TestSpectrogramMissing(t *testing.T) {
	sys := newFakeSystem()
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	record := seedRecord(sys, owner, analyses.StatusCompleted)

	req := httptest.NewRequest("GET", "/analyses/"+record.ID.String()+"/spectrogram", nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestList(t *testing.T) {
	sys := newFakeSystem()
	server := testServer(sys, 1<<20)

	owner := uuid.New()
	seedRecord(sys, owner, analyses.StatusCompleted)
	seedRecord(sys, owner, analyses.StatusFailed)
	seedRecord(sys, uuid.New(), analyses.StatusCompleted)

	req := httptest.NewRequest("GET", "/analyses", nil)
	req.Header.Set(middleware.OwnerHeader, owner.String())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[analyses.Analysis]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want only the caller's 2 records", result.Total)
	}
}
