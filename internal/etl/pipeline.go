package etl

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"

	"github.com/janduczek/retailsync/pkg/logger"
	"github.com/janduczek/retailsync/pkg/models"
)

// RunStatus classifies the outcome of a pipeline run.
type RunStatus string

const (
	// StatusCompleted means every row either loaded or was a duplicate.
	StatusCompleted RunStatus = "completed"
	// StatusCompletedWithWarnings means some rows were rejected or some
	// chunks failed, but data was loaded.
	StatusCompletedWithWarnings RunStatus = "completed_with_warnings"
	// StatusFailed means no chunk succeeded (store unreachable included).
	StatusFailed RunStatus = "failed"
)

// Report is the externally observable summary of one run.
type Report struct {
	RunID             string                 `json:"runId"`
	Status            RunStatus              `json:"status"`
	RowsRead          int64                  `json:"rowsRead"`
	Transformed       int64                  `json:"transformed"`
	Rejected          map[RejectReason]int64 `json:"rejected"`
	DuplicatesInBatch int64                  `json:"duplicatesInBatch"`
	ChunksTotal       int                    `json:"chunksTotal"`
	ChunksFailed      int                    `json:"chunksFailed"`
	Inserted          int64                  `json:"inserted"`
	Replaced          int64                  `json:"replaced"`
	FailedWrites      int64                  `json:"failedWrites"`
	Elapsed           time.Duration          `json:"elapsed"`
	Sources           []SourceSummary        `json:"sources"`
}

// SourceSummary is the per-file slice of the run report.
type SourceSummary struct {
	SourceID     string `json:"sourceId"`
	RowsRead     int64  `json:"rowsRead"`
	Inserted     int64  `json:"inserted"`
	Replaced     int64  `json:"replaced"`
	ChunksFailed int    `json:"chunksFailed"`
	Skipped      bool   `json:"skipped,omitempty"`
}

// RejectedTotal sums rejections across all reasons.
func (r *Report) RejectedTotal() int64 {
	var n int64
	for _, v := range r.Rejected {
		n += v
	}
	return n
}

// Written is the number of documents that reached the store this run.
func (r *Report) Written() int64 {
	return r.Inserted + r.Replaced
}

// Pipeline drives the source files end to end, chunk by chunk, through the
// transformer and writer. Files run in configured order, chunks sequentially;
// that keeps last-write-wins deterministic and the report reproducible.
type Pipeline struct {
	Sources   []models.SourceFile
	Writer    Writer
	ChunkSize int

	// openReader is swapped in tests that exercise reader failures.
	openReader func(path string, chunkSize int) (RowReader, error)
}

func NewPipeline(sources []models.SourceFile, writer Writer, chunkSize int) *Pipeline {
	return &Pipeline{
		Sources:   sources,
		Writer:    writer,
		ChunkSize: chunkSize,
		openReader: func(path string, chunkSize int) (RowReader, error) {
			return NewCSVReader(path, chunkSize)
		},
	}
}

// Run executes one pipeline run. Row and chunk failures are absorbed into the
// report; the returned error is non-nil only for run-level failure (context
// cancellation, or no chunk succeeded at all).
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:    xid.New().String(),
		Rejected: make(map[RejectReason]int64),
	}
	start := time.Now()
	runLog := logger.WithFields(log.Fields{"runId": report.RunID})

	runLog.Infof("Starting pipeline run: %d source(s), chunk size %d", len(p.Sources), p.ChunkSize)

	chunksSucceeded := 0
	sourcesSkipped := 0
	for _, src := range p.Sources {
		if err := p.runSource(ctx, src, report, &chunksSucceeded); err != nil {
			if ctx.Err() != nil {
				report.Elapsed = time.Since(start)
				report.Status = StatusFailed
				return report, err
			}
			// A missing or unopenable file is a warning; the remaining
			// sources still load.
			sourcesSkipped++
			runLog.WithError(err).Errorf("Source %s not fully processed", src.SourceID)
		}
	}

	report.Elapsed = time.Since(start)
	report.Status = runStatus(report, chunksSucceeded, sourcesSkipped, len(p.Sources))

	runLog.WithFields(log.Fields{
		"status":       report.Status,
		"rowsRead":     report.RowsRead,
		"written":      report.Written(),
		"rejected":     report.RejectedTotal(),
		"duplicates":   report.DuplicatesInBatch,
		"chunksFailed": report.ChunksFailed,
		"elapsed":      report.Elapsed.Round(time.Millisecond).String(),
	}).Infof("Pipeline run finished")

	if report.Status == StatusFailed {
		return report, errors.New("pipeline run failed: no chunk succeeded")
	}
	return report, nil
}

func runStatus(report *Report, chunksSucceeded, sourcesSkipped, sourceCount int) RunStatus {
	if chunksSucceeded == 0 && (report.ChunksTotal > 0 || sourcesSkipped == sourceCount) {
		return StatusFailed
	}
	if report.RejectedTotal() > 0 || report.ChunksFailed > 0 || sourcesSkipped > 0 {
		return StatusCompletedWithWarnings
	}
	return StatusCompleted
}

func (p *Pipeline) runSource(ctx context.Context, src models.SourceFile, report *Report, chunksSucceeded *int) error {
	reader, err := p.openReader(src.Path, p.ChunkSize)
	if err != nil {
		report.Sources = append(report.Sources, SourceSummary{SourceID: src.SourceID, Skipped: true})
		return err
	}
	defer reader.Close()

	srcLog := logger.WithFields(log.Fields{"runId": report.RunID, "source": src.SourceID})
	srcLog.Infof("Loading %s (%s)", src.Name, src.Path)

	summary := SourceSummary{SourceID: src.SourceID}
	transformer := NewTransformer(src)
	start := time.Now()
	chunkNum := 0

	for {
		if err := ctx.Err(); err != nil {
			report.Sources = append(report.Sources, summary)
			return err
		}

		rows, malformed, err := reader.Next()
		report.RowsRead += int64(len(rows)) + malformed
		summary.RowsRead += int64(len(rows)) + malformed
		if malformed > 0 {
			report.Rejected[RejectMalformedRow] += malformed
		}
		if err != nil {
			report.Sources = append(report.Sources, summary)
			return err
		}
		if len(rows) == 0 && malformed == 0 {
			break
		}

		docs := make([]models.Document, 0, len(rows))
		for _, row := range rows {
			doc, reason := transformer.Transform(row)
			if reason != "" {
				report.Rejected[reason]++
				continue
			}
			docs = append(docs, *doc)
		}
		report.Transformed += int64(len(docs))

		chunkNum++
		report.ChunksTotal++
		res, werr := p.Writer.Write(ctx, docs)
		if werr != nil {
			report.ChunksFailed++
			summary.ChunksFailed++
			report.FailedWrites += int64(len(docs))
			srcLog.WithError(werr).Errorf("Chunk %d failed (%d docs)", chunkNum, len(docs))
			continue
		}

		(*chunksSucceeded)++
		report.Inserted += res.Inserted
		report.Replaced += res.Replaced
		report.DuplicatesInBatch += res.DuplicatesInBatch
		summary.Inserted += res.Inserted
		summary.Replaced += res.Replaced

		elapsed := time.Since(start)
		rate := 0.0
		if elapsed.Seconds() > 0 {
			rate = float64(summary.Inserted+summary.Replaced) / elapsed.Seconds()
		}
		srcLog.Infof("Chunk %d done: %d docs | Total: %d | Rate: %.0f docs/sec",
			chunkNum, len(docs), summary.Inserted+summary.Replaced, rate)
	}

	srcLog.Infof("Source completed: %d rows in %.2fs", summary.RowsRead, time.Since(start).Seconds())
	report.Sources = append(report.Sources, summary)
	return nil
}
