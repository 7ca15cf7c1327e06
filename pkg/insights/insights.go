// Package insights assembles statistical summaries and AI-generated
// interpretation for a baseline/sample comparison.
package insights

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/llm"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
)

// Analysis result statuses.
const (
	StatusSuccess         = "success"
	StatusStatisticalOnly = "statistical_only"
)

// Statistics is the statistical summary of one comparison.
type Statistics struct {
	SampleName    string             `json:"sample_name"`
	BaselineStats curve.Summary      `json:"baseline_stats"`
	SampleStats   curve.Summary      `json:"sample_stats"`
	Differences   curve.Differences  `json:"differences"`
	Similarity    *similarity.Report `json:"similarity"`
}

// Metadata carries request-level context echoed back with the result.
type Metadata struct {
	BaselineFile      string `json:"baseline_file"`
	SampleFile        string `json:"sample_file"`
	AnalysisTimestamp string `json:"analysis_timestamp"`
	Status            string `json:"status"`
}

// Result is the full analysis response for one sample.
type Result struct {
	SampleName string     `json:"sample_name"`
	Statistics Statistics `json:"statistics"`
	AIInsights string     `json:"ai_insights"`
	Metadata   Metadata   `json:"metadata"`
}

// Analyzer produces analysis results. The LLM client may be nil, in which
// case every result degrades to the statistical-only text.
type Analyzer struct {
	engine *similarity.Engine
	client llm.Client
}

// NewAnalyzer creates an analyzer over the given comparison engine and
// completion client (nil client disables AI interpretation).
func NewAnalyzer(engine *similarity.Engine, client llm.Client) *Analyzer {
	return &Analyzer{engine: engine, client: client}
}

// Summarize computes the statistical summary and similarity report for one
// sample against the baseline, running the two independent computations
// concurrently. Shape errors from the engine surface to the caller.
func (a *Analyzer) Summarize(ctx context.Context, baseline, sample curve.Curve, sampleName string) (Statistics, error) {
	stats := Statistics{SampleName: sampleName}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.BaselineStats = curve.Summarize(baseline)
		stats.SampleStats = curve.Summarize(sample)
		stats.Differences = curve.Diff(stats.BaselineStats, stats.SampleStats)
		return nil
	})
	g.Go(func() error {
		report, err := a.engine.Compare(baseline, sample)
		if err != nil {
			return err
		}
		stats.Similarity = &report
		return nil
	})

	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

// Analyze runs the full pipeline for one sample: statistics, similarity, and
// AI interpretation. LLM failures never fail the request; the result carries
// the statistical-only fallback text and status instead.
func (a *Analyzer) Analyze(ctx context.Context, baseline, sample curve.Curve, sampleName, baselineFile, sampleFile string) (Result, error) {
	stats, err := a.Summarize(ctx, baseline, sample, sampleName)
	if err != nil {
		return Result{}, fmt.Errorf("failed to summarize %s: %w", sampleName, err)
	}

	result := Result{
		SampleName: sampleName,
		Statistics: stats,
		Metadata: Metadata{
			BaselineFile:      baselineFile,
			SampleFile:        sampleFile,
			AnalysisTimestamp: time.Now().Format(time.RFC3339),
			Status:            StatusSuccess,
		},
	}

	if a.client == nil {
		result.AIInsights = fallbackInsights(stats)
		result.Metadata.Status = StatusStatisticalOnly
		return result, nil
	}

	text, err := a.client.Complete(ctx, buildPrompt(stats))
	if err != nil {
		result.AIInsights = fallbackInsights(stats)
		result.Metadata.Status = StatusStatisticalOnly
		return result, nil
	}

	result.AIInsights = text
	return result, nil
}
