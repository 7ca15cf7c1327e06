package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/insights"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/store"
)

// upload is one parsed multipart file: its raw bytes, the curve parsed from
// them, and the content fingerprint persisted with the analysis.
type upload struct {
	filename string
	curve    curve.Curve
	hash     string
}

// readUpload pulls one named file out of the multipart form, parses it as a
// curve CSV, and fingerprints the content.
func readUpload(fh *multipart.FileHeader) (upload, error) {
	f, err := fh.Open()
	if err != nil {
		return upload{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return upload{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}

	c, err := curve.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return upload{}, fmt.Errorf("invalid curve file %s: %w", fh.Filename, err)
	}

	return upload{
		filename: fh.Filename,
		curve:    c,
		hash:     strconv.FormatUint(xxhash.Sum64(data), 16),
	}, nil
}

func formFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, fmt.Errorf("%s file is required", field)
	}
	return r.MultipartForm.File[field][0], nil
}

// sampleNameFor strips the extension from an uploaded filename, matching how
// samples have always been labeled.
func sampleNameFor(filename string) string {
	base := path.Base(filename)
	if name := strings.TrimSuffix(base, path.Ext(base)); name != "" {
		return name
	}
	return "Unknown Sample"
}

// insightsResponse wraps the analysis result with the persisted record ID.
type insightsResponse struct {
	insights.Result
	AnalysisID string `json:"analysis_id"`
}

func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := s.observe(ctx, "insights")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		done(err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}

	baselineFH, err := formFile(r, "baseline")
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}
	sampleFH, err := formFile(r, "sample")
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}

	parseStart := time.Now()
	baseline, err := readUpload(baselineFH)
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}
	sample, err := readUpload(sampleFH)
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}
	s.metrics.RecordStage(ctx, "insights", "parse", time.Since(parseStart).Milliseconds())

	sampleName := r.FormValue("sample_name")
	if sampleName == "" {
		sampleName = sampleNameFor(sample.filename)
	}

	analyzeStart := time.Now()
	result, err := s.analyzer.Analyze(ctx, baseline.curve, sample.curve, sampleName, baseline.filename, sample.filename)
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}
	s.metrics.RecordStage(ctx, "insights", "analyze", time.Since(analyzeStart).Milliseconds())

	record := &store.Analysis{
		BaselineFile: baseline.filename,
		SampleFile:   sample.filename,
		SampleName:   sampleName,
		BaselineHash: baseline.hash,
		SampleHash:   sample.hash,
		Report:       result.Statistics.Similarity,
		Insights:     result.AIInsights,
	}
	if err := s.store.Save(ctx, record); err != nil {
		// The analysis itself succeeded; log the persistence failure and
		// still return the result.
		s.logger.Warn("failed to persist analysis", "error", err)
		s.metrics.RecordError(ctx, "insights", ErrTypeDatabase)
	} else if count, err := s.store.Count(ctx); err == nil {
		s.metrics.SetStorageCount(ctx, "analyses", count)
	}

	done(nil)
	writeJSON(w, http.StatusOK, insightsResponse{Result: result, AnalysisID: record.ID})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	analyses, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if analyses == nil {
		analyses = []*store.Analysis{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses, "count": len(analyses)})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleAnalysisHealth(w http.ResponseWriter, r *http.Request) {
	llmStatus := "not_configured"
	if s.llmConfigured {
		llmStatus = "configured"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"llm_api": llmStatus,
		"service": "graph_analysis",
	})
}
