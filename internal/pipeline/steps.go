package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/planecrash/internal/crawler"
	"github.com/nao1215/planecrash/internal/datafile"
	"github.com/nao1215/planecrash/internal/model"
)

// ErrNoRecord is returned by steps that need a record when the extract step
// has not produced one.
var ErrNoRecord = errors.New("incident has no extracted record")

// RecordAppender appends a record to a data file.
// *datafile.Writer implements it.
type RecordAppender interface {
	Append(record *model.Record) error
}

// PageRecorder stores the outcome of an incident page.
// *database.Ledger implements it.
type PageRecorder interface {
	RecordPage(ctx context.Context, runID int64, incident *model.Incident) error
}

// ExtractStep loads the incident page and extracts its record.
type ExtractStep struct {
	// policy decides how repeated labels are handled.
	policy model.DuplicatePolicy

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithDuplicatePolicy sets the duplicate label policy.
func WithDuplicatePolicy(policy model.DuplicatePolicy) ExtractStepOption {
	return func(s *ExtractStep) {
		s.policy = policy
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extract step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		policy: model.DuplicateLastWins,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do loads the page at incident.Path and stores its hash and record.
func (s *ExtractStep) Do(_ context.Context, incident *model.Incident) error {
	page, err := crawler.LoadPage(incident.Path)
	if err != nil {
		return err
	}
	incident.Hash = page.Hash

	record, err := crawler.ExtractRecord(page, crawler.WithDuplicatePolicy(s.policy))
	if err != nil {
		return err
	}
	incident.Record = record

	s.logger.Debug("extracted record", "path", incident.Path, "fields", record.Len())
	return nil
}

// WriteStep appends the extracted record to the data file.
type WriteStep struct {
	writer RecordAppender
}

// NewWriteStep creates a new write step.
func NewWriteStep(writer RecordAppender) *WriteStep {
	return &WriteStep{writer: writer}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do appends incident.Record.
// Failures of the data file itself, including schema drift, abort the walk.
// A record rejected for its own content fails only this page.
func (s *WriteStep) Do(_ context.Context, incident *model.Incident) error {
	if incident.Record == nil {
		return ErrNoRecord
	}

	err := s.writer.Append(incident.Record)
	if err == nil || errors.Is(err, datafile.ErrUnsafeValue) || errors.Is(err, datafile.ErrEmptyRecord) {
		return err
	}
	return crawler.Abort(err)
}

// LedgerStep records the incident outcome in the ingest ledger.
// It is meant to be added as a final step so failures are recorded too.
type LedgerStep struct {
	recorder PageRecorder
	runID    int64
}

// NewLedgerStep creates a ledger step recording pages under runID.
func NewLedgerStep(recorder PageRecorder, runID int64) *LedgerStep {
	return &LedgerStep{recorder: recorder, runID: runID}
}

// Name returns the step name.
func (s *LedgerStep) Name() string {
	return "ledger"
}

// Do stores the incident. A ledger failure aborts the walk.
func (s *LedgerStep) Do(ctx context.Context, incident *model.Incident) error {
	return crawler.Abort(s.recorder.RecordPage(ctx, s.runID, incident))
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// DuplicatePolicy is passed to the extract step.
	DuplicatePolicy model.DuplicatePolicy

	// Recorder is the ledger. Nil disables the ledger step.
	Recorder PageRecorder

	// RunID is the ledger run the pages belong to.
	RunID int64

	// Logger is passed to the steps.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDuplicatePolicy sets the duplicate label policy.
func WithPipelineDuplicatePolicy(policy model.DuplicatePolicy) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DuplicatePolicy = policy
	}
}

// WithPipelineLedger enables the ledger step.
func WithPipelineLedger(recorder PageRecorder, runID int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Recorder = recorder
		c.RunID = runID
	}
}

// WithPipelineLogger sets the logger used by the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the pipeline used by the scrape command:
// extract, write, and optionally ledger as a final step.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineLedger, etc).
func DefaultPipeline(writer RecordAppender, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		DuplicatePolicy: model.DuplicateLastWins,
		Logger:          slog.Default(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewExtractStep(
			WithDuplicatePolicy(cfg.DuplicatePolicy),
			WithExtractLogger(cfg.Logger),
		),
		NewWriteStep(writer),
	)

	if cfg.Recorder != nil {
		p.AddFinalStep(NewLedgerStep(cfg.Recorder, cfg.RunID))
	}

	return p
}
