package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperjump/kensa/internal/docid"
	"github.com/hyperjump/kensa/internal/models"
	"go.uber.org/zap"
)

// TextExtractor converts an uploaded document to text.
type TextExtractor interface {
	ExtractUpload(filename string, content []byte) (string, error)
}

// ResumeGrader grades a resume against a job description.
type ResumeGrader interface {
	Grade(ctx context.Context, jobDescription, resumeText string) (string, error)
}

// Inbox grades every file the watcher reports against a fixed job description.
// A file is graded again only when its content changes.
type Inbox struct {
	extractor      TextExtractor
	grader         ResumeGrader
	jobDescription string
	emit           func(models.GradeRecord)
	logger         *zap.Logger

	mu   sync.Mutex
	seen map[string]string // path -> content ID last emitted
}

// NewInbox returns an Inbox that calls emit for each graded file.
func NewInbox(extractor TextExtractor, grader ResumeGrader, jobDescription string, emit func(models.GradeRecord), logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{
		extractor:      extractor,
		grader:         grader,
		jobDescription: jobDescription,
		emit:           emit,
		logger:         logger,
		seen:           make(map[string]string),
	}
}

// HandleFile reads, extracts and grades the file at path. It returns the record
// and true when a grade was emitted, or false when the content was already graded.
func (in *Inbox) HandleFile(ctx context.Context, path string) (models.GradeRecord, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.GradeRecord{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	id := docid.ContentID(content)

	in.mu.Lock()
	if in.seen[path] == id {
		in.mu.Unlock()
		return models.GradeRecord{}, false, nil
	}
	in.mu.Unlock()

	name := filepath.Base(path)
	text, err := in.extractor.ExtractUpload(name, content)
	if err != nil {
		return models.GradeRecord{}, false, fmt.Errorf("extract %s: %w", name, err)
	}
	grade, err := in.grader.Grade(ctx, in.jobDescription, text)
	if err != nil {
		return models.GradeRecord{}, false, fmt.Errorf("grade %s: %w", name, err)
	}

	in.mu.Lock()
	if in.seen[path] == id {
		in.mu.Unlock()
		return models.GradeRecord{}, false, nil
	}
	in.seen[path] = id
	in.mu.Unlock()

	rec := models.GradeRecord{Grade: grade, File: name, ID: id}
	if in.emit != nil {
		in.emit(rec)
	}
	return rec, true, nil
}

// OnFile adapts HandleFile to a Watcher callback. Failures are logged and skipped.
func (in *Inbox) OnFile(ctx context.Context) func(path string) {
	return func(path string) {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := in.HandleFile(ctx, path); err != nil {
			in.logger.Warn("inbox skipped file", zap.String("path", path), zap.Error(err))
		}
	}
}
