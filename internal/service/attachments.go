package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/jobs"
)

// JobTypeFileWrite identifies deferred attachment writes on the job queue.
const JobTypeFileWrite = "file_write"

// stagingDir holds spooled uploads until their owning transaction commits.
const stagingDir = ".staging"

// Allowed extensions per upload surface.
var (
	TaskFileExtensions    = []string{"pdf", "png", "jpg", "jpeg", "gif", "doc", "docx", "txt", "mp3", "wav", "mp4"}
	ArticleFileExtensions = []string{"pdf", "doc", "docx", "txt", "png", "jpg", "jpeg"}
	AdFileExtensions      = []string{"pdf", "png", "jpg", "jpeg", "gif", "psd", "ai", "eps"}
)

type blobStorage interface {
	SaveStream(filename string, r io.Reader) (int64, error)
	Move(from, to string) error
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type downloadSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// deletionLedger resolves task file rows so soft-deleted files stop being served.
type deletionLedger interface {
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TaskFile, error)
}

// FileUpload is one file received from a multipart request. Size is the size the
// client declared; the spooled byte count is authoritative.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FileDownload is an opened attachment ready for streaming.
type FileDownload struct {
	File     *os.File
	Filename string
	Size     int64
}

// storedFile describes a spooled upload and where it will live once committed.
type storedFile struct {
	Original string
	Stored   string
	Path     string
	Staged   string
	Ext      string
	Size     int64
}

// AttachmentsConfig configures upload limits and link generation.
type AttachmentsConfig struct {
	MaxFileSize int64
	APIPrefix   string
}

// Attachments spools uploads before the owning transaction, moves them into place after it
// commits and signs download links.
type Attachments struct {
	storage blobStorage
	signer  downloadSigner
	queue   jobEnqueuer
	ledger  deletionLedger
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AttachmentsConfig
}

// NewAttachments constructs the attachment store.
func NewAttachments(storage blobStorage, signer downloadSigner, metrics *MetricsService, logger *zap.Logger, cfg AttachmentsConfig) *Attachments {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 50 * 1024 * 1024
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &Attachments{storage: storage, signer: signer, metrics: metrics, logger: logger, cfg: cfg}
}

// SetQueue attaches the retry queue used when an immediate write fails.
func (a *Attachments) SetQueue(queue jobEnqueuer) {
	a.queue = queue
}

// SetLedger lets downloads check the task file ledger for soft deletes.
func (a *Attachments) SetLedger(ledger deletionLedger) {
	a.ledger = ledger
}

// prepare validates uploads, assigns stored names under dir and spools every file to the
// staging area. On error nothing stays staged.
func (a *Attachments) prepare(dir string, uploads []FileUpload, allowed []string) ([]storedFile, error) {
	out := make([]storedFile, 0, len(uploads))
	fail := func(err error) ([]storedFile, error) {
		a.discard(out)
		return nil, err
	}
	for _, upload := range uploads {
		name := filepath.Base(strings.TrimSpace(upload.Filename))
		if name == "" || name == "." || name == string(filepath.Separator) {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if !extensionAllowed(ext, allowed) {
			return fail(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not allowed", ext)))
		}
		if upload.Size > a.cfg.MaxFileSize {
			return fail(a.tooLarge(name))
		}
		if upload.Content == nil {
			return fail(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s is empty", name)))
		}

		staged := filepath.ToSlash(filepath.Join(stagingDir, uuid.NewString()))
		size, err := a.storage.SaveStream(staged, io.LimitReader(upload.Content, a.cfg.MaxFileSize+1))
		if err != nil {
			return fail(appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to receive upload"))
		}
		if size == 0 || size > a.cfg.MaxFileSize {
			_ = a.storage.Delete(staged)
			if size == 0 {
				return fail(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s is empty", name)))
			}
			return fail(a.tooLarge(name))
		}

		stored := fmt.Sprintf("%s_%s", uuid.NewString(), strings.ReplaceAll(name, " ", "_"))
		out = append(out, storedFile{
			Original: name,
			Stored:   stored,
			Path:     filepath.ToSlash(filepath.Join(dir, stored)),
			Staged:   staged,
			Ext:      ext,
			Size:     size,
		})
	}
	return out, nil
}

func (a *Attachments) tooLarge(name string) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s exceeds %d bytes limit", name, a.cfg.MaxFileSize))
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == ext {
			return true
		}
	}
	return false
}

// discard drops staged files whose transaction did not commit.
func (a *Attachments) discard(files []storedFile) {
	for _, f := range files {
		if err := a.storage.Delete(f.Staged); err != nil {
			a.logger.Warn("failed to discard staged upload", zap.String("staged", f.Staged), zap.Error(err))
		}
	}
}

// write moves committed files into place. Failures are handed to the retry queue.
func (a *Attachments) write(files []storedFile) {
	for _, f := range files {
		if err := a.storage.Move(f.Staged, f.Path); err != nil {
			a.logger.Warn("attachment write failed, scheduling retry", zap.String("path", f.Path), zap.Error(err))
			a.enqueue(f)
			continue
		}
		a.metrics.RecordFileJob(OutcomeSuccess)
	}
}

func (a *Attachments) enqueue(f storedFile) {
	if a.queue == nil {
		a.metrics.RecordFileJob(OutcomeError)
		a.logger.Error("attachment left in staging, no retry queue", zap.String("path", f.Path), zap.String("staged", f.Staged))
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: JobTypeFileWrite, Payload: f}
	if err := a.queue.Enqueue(job); err != nil {
		a.metrics.RecordFileJob(OutcomeError)
		a.logger.Error("failed to enqueue attachment write", zap.String("path", f.Path), zap.String("staged", f.Staged), zap.Error(err))
	}
}

// HandleJob is the queue handler retrying deferred writes.
func (a *Attachments) HandleJob(_ context.Context, job jobs.Job) error {
	f, ok := job.Payload.(storedFile)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	if err := a.storage.Move(f.Staged, f.Path); err != nil {
		a.metrics.RecordFileJob(OutcomeError)
		return err
	}
	a.metrics.RecordFileJob(OutcomeSuccess)
	return nil
}

// Abandon records a deferred write that ran out of retries. The history row already points at
// the file, so the loss is surfaced loudly. The staged copy is left for manual recovery.
func (a *Attachments) Abandon(job jobs.Job, err error) {
	var path, staged string
	if f, ok := job.Payload.(storedFile); ok {
		path, staged = f.Path, f.Staged
	}
	a.metrics.RecordFileJob(OutcomeAbandoned)
	a.logger.Error("attachment write abandoned",
		zap.String("job_id", job.ID),
		zap.String("path", path),
		zap.String("staged", staged),
		zap.Int("attempt", job.Attempt),
		zap.Error(err),
	)
}

// Link returns a signed download link for a stored file.
func (a *Attachments) Link(id, path, original string) (*dto.FileDownloadResponse, error) {
	token, _, err := a.signer.Generate(id, path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(a.cfg.APIPrefix, "/")
	return &dto.FileDownloadResponse{
		ID:               id,
		OriginalFilename: original,
		DownloadURL:      fmt.Sprintf("%s/files/download?token=%s&name=%s", base, url.QueryEscape(token), url.QueryEscape(original)),
	}, nil
}

// Open validates a download token and opens the referenced file. Task files deleted after
// the link was issued are reported as missing.
func (a *Attachments) Open(ctx context.Context, token, filename string) (*FileDownload, error) {
	id, relPath, _, err := a.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	if err := a.ensureLive(ctx, id); err != nil {
		return nil, err
	}
	file, err := a.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file metadata")
	}
	if filename == "" {
		filename = filepath.Base(relPath)
	}
	return &FileDownload{File: file, Filename: filepath.Base(filename), Size: info.Size()}, nil
}

// ensureLive rejects ids of soft-deleted task files. Article files and ads are not in the
// task ledger and pass through.
func (a *Attachments) ensureLive(ctx context.Context, id string) error {
	if a.ledger == nil || id == "" {
		return nil
	}
	file, err := a.ledger.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.IsDeleted {
		return appErrors.Clone(appErrors.ErrNotFound, "file has been deleted")
	}
	return nil
}
