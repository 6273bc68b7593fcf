package analyses

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Abhishek-Sahu25/Echo-check/internal/pipeline"
	"github.com/Abhishek-Sahu25/Echo-check/internal/reports"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/pagination"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/query"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/repository"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	runtime    pipeline.Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an analysis repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	runtime pipeline.Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		runtime:    runtime,
		logger:     logger.With("system", "analyses"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	owner uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Analysis], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("OwnerID", owner).
		WhereSearch(page.Search, "FileName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, owner, id uuid.UUID) (*Analysis, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("OwnerID", owner).
		BuildSingle()

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAnalysis)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

// Submit registers a pending record, then drives it through the pipeline to
// a terminal state. The pipeline runs on a context detached from the request
// so a dropped caller still leaves a durable outcome. Pipeline failure is not
// a Submit error; the failed record is returned for the caller to surface.
func (r *repo) Submit(ctx context.Context, owner uuid.UUID, cmd SubmitCommand) (*Analysis, error) {
	a, err := r.create(ctx, owner, cmd)
	if err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)

	if err := r.transition(detached, a.ID, StatusPending, StatusProcessing); err != nil {
		r.abandon(detached, a.ID, err)
		return nil, err
	}

	result, runErr := r.runtime.Execute(detached, a.ID, cmd.Data, cmd.Classification)
	if runErr != nil {
		r.logger.Warn("analysis failed", "id", a.ID, "error", runErr)
		return r.fail(detached, a.ID, runErr)
	}

	record, err := r.complete(detached, a.ID, result)
	if err != nil {
		r.abandon(detached, a.ID, err)
		return nil, err
	}

	return record, nil
}

func (r *repo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	a, err := r.Find(ctx, owner, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM analyses WHERE id = $1 AND owner_id = $2",
			id, owner,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.deleteArtifacts(ctx, a.ID)

	r.logger.Info("analysis deleted", "id", id)
	return nil
}

// Report returns the PDF for a completed analysis, generating and caching it
// on first request. Regeneration is byte-identical, so the cache is purely an
// optimization.
func (r *repo) Report(ctx context.Context, owner, id uuid.UUID) ([]byte, error) {
	a, err := r.Find(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if a.Status != StatusCompleted {
		return nil, reports.ErrNotCompleted
	}

	key := pipeline.ReportKey(a.ID)
	if cached, err := r.readBlob(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("read cached report: %w", err)
	}

	doc, err := r.buildDocument(ctx, a)
	if err != nil {
		return nil, err
	}

	data, err := reports.Generate(*doc)
	if err != nil {
		return nil, err
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), "application/pdf"); err != nil {
		r.logger.Warn("report cache write failed", "key", key, "error", err)
	}

	return data, nil
}

func (r *repo) Spectrogram(ctx context.Context, owner, id uuid.UUID) (*storage.DownloadResult, error) {
	a, err := r.Find(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if a.SpectrogramKey == nil {
		return nil, ErrNoSpectrogram
	}

	result, err := r.storage.Download(ctx, *a.SpectrogramKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoSpectrogram
		}
		return nil, fmt.Errorf("download spectrogram: %w", err)
	}

	return result, nil
}

func (r *repo) create(ctx context.Context, owner uuid.UUID, cmd SubmitCommand) (*Analysis, error) {
	id := uuid.New()

	q := `
		INSERT INTO analyses(id, owner_id, file_name, file_type, file_size, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, owner_id, file_name, file_type, file_size, status, truth_score, audio_score, video_score, anomalies, spectrogram_key, failure_reason, analysis_duration_ms, created_at, updated_at`

	insertArgs := []any{
		id,
		owner,
		cmd.FileName,
		string(cmd.Classification.Modality),
		int64(len(cmd.Data)),
		StatusPending,
	}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Analysis, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanAnalysis)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("analysis created", "id", a.ID, "file_name", a.FileName, "file_type", a.FileType)
	return &a, nil
}

// transition performs a guarded state change. The WHERE clause on the
// expected status serializes writers per record; a lost race surfaces as
// ErrInvalidTransition.
func (r *repo) transition(ctx context.Context, id uuid.UUID, from, to Status) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE analyses SET status = $1, updated_at = now() WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return err
}

func (r *repo) complete(ctx context.Context, id uuid.UUID, result *pipeline.Result) (*Analysis, error) {
	anomalies, err := json.Marshal(anomaliesOrEmpty(result.Anomalies))
	if err != nil {
		return nil, fmt.Errorf("encode anomalies: %w", err)
	}

	durationMS := result.Duration.Milliseconds()

	q := `
		UPDATE analyses
		SET status = $1,
			truth_score = $2,
			audio_score = $3,
			video_score = $4,
			anomalies = $5,
			spectrogram_key = $6,
			analysis_duration_ms = $7,
			updated_at = now()
		WHERE id = $8 AND status = $9`

	err = repository.ExecExpectOne(
		ctx, r.db, q,
		StatusCompleted,
		result.TruthScore,
		result.AudioScore,
		result.VideoScore,
		anomalies,
		result.SpectrogramKey,
		durationMS,
		id,
		StatusProcessing,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, StatusProcessing, StatusCompleted)
	}
	if err != nil {
		return nil, err
	}

	return r.findByID(ctx, id)
}

func (r *repo) fail(ctx context.Context, id uuid.UUID, cause error) (*Analysis, error) {
	reason := cause.Error()

	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE analyses SET status = $1, failure_reason = $2, updated_at = now() WHERE id = $3 AND status = $4",
		StatusFailed, reason, id, StatusProcessing,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, StatusProcessing, StatusFailed)
	}
	if err != nil {
		return nil, err
	}

	return r.findByID(ctx, id)
}

// abandon marks a record failed after an internal error so no submission is
// left in a non-terminal state. Best effort: records that already reached a
// terminal state are untouched, and the triggering error is surfaced either way.
func (r *repo) abandon(ctx context.Context, id uuid.UUID, cause error) {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE analyses SET status = $1, failure_reason = $2, updated_at = now() WHERE id = $3 AND status IN ($4, $5)",
		StatusFailed, cause.Error(), id, StatusPending, StatusProcessing,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("abandon failed", "id", id, "error", err)
	}
}

// findByID is the unscoped lookup used after transitions the repository
// itself drives; owner scoping happened at submission.
func (r *repo) findByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		BuildSingle()

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAnalysis)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) deleteArtifacts(ctx context.Context, id uuid.UUID) {
	keys := []string{
		pipeline.UploadKey(id),
		pipeline.SpectrogramKey(id),
		pipeline.ReportKey(id),
	}

	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("artifact delete failed", "key", key, "error", err)
		}
	}
}

func (r *repo) buildDocument(ctx context.Context, a *Analysis) (*reports.Document, error) {
	doc := &reports.Document{
		ID:          a.ID,
		FileName:    a.FileName,
		FileType:    a.FileType,
		FileSize:    a.FileSize,
		Anomalies:   anomaliesOrEmpty(a.Anomalies),
		CompletedAt: a.UpdatedAt,
	}

	if a.TruthScore != nil {
		doc.TruthScore = *a.TruthScore
	}
	doc.AudioScore = a.AudioScore
	doc.VideoScore = a.VideoScore

	if a.AnalysisDurationMS != nil {
		doc.Duration = time.Duration(*a.AnalysisDurationMS) * time.Millisecond
	}

	if a.SpectrogramKey != nil {
		raster, err := r.readBlob(ctx, *a.SpectrogramKey)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("read spectrogram: %w", err)
		}
		doc.Spectrogram = raster
	}

	return doc, nil
}

func (r *repo) readBlob(ctx context.Context, key string) ([]byte, error) {
	result, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()
	return io.ReadAll(result.Body)
}

func anomaliesOrEmpty(anomalies []scoring.Anomaly) []scoring.Anomaly {
	if anomalies == nil {
		return []scoring.Anomaly{}
	}
	return anomalies
}
