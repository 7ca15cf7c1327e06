package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/chat"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/insights"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/metrics"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/store"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// newTestServer assembles a full server over in-memory collaborators.
func newTestServer(t *testing.T, llm *fakeLLM) (*Server, store.AnalysisStore) {
	t.Helper()

	engine := similarity.NewEngine(similarity.Options{})
	memStore := store.NewMemoryStore()

	sessions, err := chat.NewSessionStore(0)
	require.NoError(t, err)

	var analyzer *insights.Analyzer
	var chatSvc *chat.Service
	configured := false
	if llm != nil {
		analyzer = insights.NewAnalyzer(engine, llm)
		chatSvc = chat.NewService(llm, sessions)
		configured = true
	} else {
		analyzer = insights.NewAnalyzer(engine, nil)
		chatSvc = chat.NewService(nil, sessions)
	}

	srv := New(Options{
		Engine:        engine,
		Analyzer:      analyzer,
		Chat:          chatSvc,
		Store:         memStore,
		LLMConfigured: configured,
	})
	return srv, memStore
}

// testCSV renders a curve file in the instrument export format: a title row,
// a header row, then data rows.
func testCSV(n int, offset float64) []byte {
	var b bytes.Buffer
	b.WriteString("Spectrum Export\n")
	b.WriteString("wavenumber,absorbance\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%g\n", i, float64(i)+offset)
	}
	return b.Bytes()
}

// multipartBody builds a multipart form with the named files and fields.
func multipartBody(t *testing.T, files map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/analysis/generate_insights", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerateInsights(t *testing.T) {
	srv, memStore := newTestServer(t, &fakeLLM{reply: "The curves track closely."})

	body, contentType := multipartBody(t, map[string][]byte{
		"baseline": testCSV(100, 0),
		"sample":   testCSV(100, 0.5),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/analysis/generate_insights", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SampleName string          `json:"sample_name"`
		AIInsights string          `json:"ai_insights"`
		AnalysisID string          `json:"analysis_id"`
		Statistics json.RawMessage `json:"statistics"`
		Metadata   struct {
			Status string `json:"status"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "sample", resp.SampleName)
	require.Equal(t, "The curves track closely.", resp.AIInsights)
	require.Equal(t, "success", resp.Metadata.Status)
	require.NotEmpty(t, resp.AnalysisID)

	var stats insights.Statistics
	require.NoError(t, json.Unmarshal(resp.Statistics, &stats))
	require.NotNil(t, stats.Similarity)
	require.InDelta(t, 0.5, stats.Differences.MeanDiff, 1e-9)

	// The analysis was persisted.
	saved, err := memStore.Get(context.Background(), resp.AnalysisID)
	require.NoError(t, err)
	require.Equal(t, "baseline.csv", saved.BaselineFile)
	require.NotEmpty(t, saved.BaselineHash)
	require.NotNil(t, saved.Report)
}

func TestGenerateInsightsSampleNameOverride(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, contentType := multipartBody(t, map[string][]byte{
		"baseline": testCSV(10, 0),
		"sample":   testCSV(10, 1),
	}, map[string]string{"sample_name": "batch 42"})

	req := httptest.NewRequest(http.MethodPost, "/analysis/generate_insights", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"sample_name":"batch 42"`)
}

func TestGenerateInsightsMissingSample(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, contentType := multipartBody(t, map[string][]byte{
		"baseline": testCSV(10, 0),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/analysis/generate_insights", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "sample file is required")
}

func TestGenerateInsightsBadCSV(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, contentType := multipartBody(t, map[string][]byte{
		"baseline": []byte("title\nheader\nonly-one-column\n"),
		"sample":   testCSV(10, 0),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/analysis/generate_insights", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHistory(t *testing.T) {
	srv, memStore := newTestServer(t, nil)
	ctx := context.Background()

	a := &store.Analysis{BaselineFile: "b.csv", SampleFile: "s.csv", SampleName: "s"}
	require.NoError(t, memStore.Save(ctx, a))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Analyses []store.Analysis `json:"analyses"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, a.ID, list.Analyses[0].ID)

	// Fetch by ID.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/history/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"sample_name":"s"`)

	// Delete, then fetch is a 404.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/analysis/history/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/history/"+a.ID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisHistoryInvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/history?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: "ok"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"llm_api":"configured"`)
}

func TestChatSendMessage(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: "That peak is the C-H stretch."})

	payload := `{"message":"what is this peak?"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/send_message", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "That peak is the C-H stretch.", resp.Response)
	require.Equal(t, chat.StatusSuccess, resp.Status)
	require.NotEmpty(t, resp.ConversationID)

	// The conversation is now retrievable.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/conversation/"+resp.ConversationID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "what is this peak?")

	// Clearing it makes it a 404.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/chat/conversation/"+resp.ConversationID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/conversation/"+resp.ConversationID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatSendMessageEmpty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/send_message", strings.NewReader(`{"message":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatQuickQuestion(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: "Fréchet distance measures curve shape similarity."})

	req := httptest.NewRequest(http.MethodPost, "/chat/quick_question",
		strings.NewReader(`{"question":"what is frechet distance?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp chat.QuickAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "what is frechet distance?", resp.Question)
	require.NotEmpty(t, resp.Answer)
}

func TestChatHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"llm_api":"not_configured"`)
	require.Contains(t, rec.Body.String(), `"active_conversations":0`)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := similarity.NewEngine(similarity.Options{})
	sessions, err := chat.NewSessionStore(0)
	require.NoError(t, err)

	srv := New(Options{
		Engine:   engine,
		Analyzer: insights.NewAnalyzer(engine, nil),
		Chat:     chat.NewService(nil, sessions),
		Store:    store.NewMemoryStore(),
		Metrics:  metrics.NewCollector(),
	})
	handler := srv.Handler()

	// Drive one request through so the counters exist.
	body, contentType := multipartBody(t, map[string][]byte{
		"baseline": testCSV(10, 0),
		"sample":   testCSV(10, 1),
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analysis/generate_insights", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	text, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(text), "graphapi_operations_total")
}
