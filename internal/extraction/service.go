package extraction

import (
	"context"
	"log/slog"
	"strings"

	dErrors "olea/pkg/domain-errors"
	"olea/pkg/platform/audit"
)

const (
	// MaxFiles bounds a multi-document extraction request.
	MaxFiles = 5
	// MaxFileSize bounds a single uploaded document.
	MaxFileSize = 10 << 20
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// Document is one uploaded file to extract from.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Metrics counts extraction outcomes.
type Metrics interface {
	IncrementExtractions(outcome string)
}

// Service runs documents through the OCR engine and the field parser.
type Service struct {
	engine  Engine
	logger  *slog.Logger
	metrics Metrics
	audit   audit.Publisher
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func NewService(engine Engine, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs one document through the engine and parser. Engine failures
// surface to the caller; a document the engine read nothing from yields an
// all-missing result rather than an error.
func (s *Service) Extract(ctx context.Context, doc Document) (Result, error) {
	if err := validateDocument(doc); err != nil {
		return Result{}, err
	}

	out, err := s.engine.Recognize(ctx, doc.Data, doc.Filename)
	if err != nil {
		s.logger.ErrorContext(ctx, "ocr engine call failed",
			"filename", doc.Filename, "error", err)
		s.count("engine_error")
		return Result{}, err
	}

	if strings.TrimSpace(out.Text) == "" {
		s.logger.WarnContext(ctx, "no text recognized", "filename", doc.Filename)
		s.count("empty")
		return EmptyResult(doc.Filename, "No text extracted"), nil
	}

	pr := Parse(out.Text, out.LineConfidences)
	res := BuildResult(doc.Filename, out.Name, out.Text, out.Confidence, pr)

	s.logger.InfoContext(ctx, "document extracted",
		"filename", doc.Filename,
		"matched_fields", res.Stats.MatchedFields,
		"confidence", res.Confidence)
	s.count("success")
	audit.LogAudit(ctx, s.logger, s.audit, "extraction.completed",
		"filename", doc.Filename,
		"matched_fields", res.Stats.MatchedFields)
	return res, nil
}

// ExtractMerged extracts each document in turn and merges the results,
// keeping the highest-confidence value per field.
func (s *Service) ExtractMerged(ctx context.Context, docs []Document) (Result, error) {
	if len(docs) == 0 {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "no documents provided")
	}
	if len(docs) > MaxFiles {
		return Result{}, dErrors.Newf(dErrors.CodeBadRequest, "too many documents: max %d", MaxFiles)
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		res, err := s.Extract(ctx, doc)
		if err != nil {
			return Result{}, err
		}
		results = append(results, res)
	}
	return MergeResults(results), nil
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementExtractions(outcome)
	}
}

func validateDocument(doc Document) error {
	if len(doc.Data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "empty document")
	}
	if len(doc.Data) > MaxFileSize {
		return dErrors.Newf(dErrors.CodeValidation, "document too large: max %d bytes", MaxFileSize)
	}
	if doc.ContentType != "" {
		base := doc.ContentType
		if idx := strings.Index(base, ";"); idx >= 0 {
			base = strings.TrimSpace(base[:idx])
		}
		if _, ok := allowedContentTypes[base]; !ok {
			return dErrors.Newf(dErrors.CodeValidation, "unsupported content type %q", base)
		}
	}
	return nil
}
