package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
)

// exportPlotCap bounds the number of points written to the exported curve
// CSVs, mirroring the point budget the frontend plots with.
const exportPlotCap = 1000

// exportEntry is the per-sample payload written into the zip.
type exportEntry struct {
	name     string
	metrics  []byte
	baseline []byte
	sample   []byte
}

// handleGenerateGraphs compares every uploaded sample against the baseline
// and streams back a zip of per-sample metrics JSON and plot-scale curve
// CSVs. Samples are processed as a parallel map; each comparison is
// independent, so the only coordination is collecting results in order.
func (s *Server) handleGenerateGraphs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := s.observe(ctx, "export")

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
	baseline, err := readUpload(baselineFH)
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}

	sampleFHs := r.MultipartForm.File["samples"]
	if len(sampleFHs) == 0 {
		err := fmt.Errorf("samples files are required")
		done(err)
		writeError(w, err)
		return
	}

	entries := make([]exportEntry, len(sampleFHs))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range sampleFHs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sample, err := readUpload(fh)
			if err != nil {
				return err
			}

			report, err := s.engine.Compare(baseline.curve, sample.curve)
			if err != nil {
				return fmt.Errorf("sample %s: %w", sample.filename, err)
			}

			entry, err := buildExportEntry(sampleNameFor(sample.filename), baseline, sample, report)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		done(err)
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		files := []struct {
			name string
			data []byte
		}{
			{entry.name + "_metrics.json", entry.metrics},
			{entry.name + "_baseline.csv", entry.baseline},
			{entry.name + "_sample.csv", entry.sample},
		}
		for _, f := range files {
			fw, err := zw.Create(f.name)
			if err != nil {
				done(err)
				writeError(w, fmt.Errorf("failed to build zip: %w", err))
				return
			}
			if _, err := fw.Write(f.data); err != nil {
				done(err)
				writeError(w, fmt.Errorf("failed to build zip: %w", err))
				return
			}
		}
	}
	if err := zw.Close(); err != nil {
		done(err)
		writeError(w, fmt.Errorf("failed to finalize zip: %w", err))
		return
	}

	done(nil)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="exported_graphs.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func buildExportEntry(name string, baseline, sample upload, report similarity.Report) (exportEntry, error) {
	metrics, err := json.MarshalIndent(map[string]any{
		"sample_name":   name,
		"baseline_file": baseline.filename,
		"sample_file":   sample.filename,
		"similarity":    report,
	}, "", "  ")
	if err != nil {
		return exportEntry{}, fmt.Errorf("failed to marshal metrics for %s: %w", name, err)
	}

	return exportEntry{
		name:     name,
		metrics:  metrics,
		baseline: curveCSV(curve.Downsample(baseline.curve, exportPlotCap)),
		sample:   curveCSV(curve.Downsample(sample.curve, exportPlotCap)),
	}, nil
}

// curveCSV renders a curve as a two-column CSV with the instrument's axis
// names as the header.
func curveCSV(c curve.Curve) []byte {
	var b bytes.Buffer
	b.WriteString("wavenumber,absorbance\n")
	for i := 0; i < c.Len(); i++ {
		fmt.Fprintf(&b, "%g,%g\n", c.X[i], c.Y[i])
	}
	return b.Bytes()
}
