package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeClient returns a canned reply or error.
type fakeClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(t *testing.T, client *fakeClient) *Service {
	t.Helper()
	sessions, err := NewSessionStore(10)
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	if client == nil {
		return NewService(nil, sessions)
	}
	return NewService(client, sessions)
}

func TestSendMessageSuccess(t *testing.T) {
	client := &fakeClient{reply: "The sample tracks the baseline closely."}
	svc := newTestService(t, client)

	resp, err := svc.SendMessage(context.Background(), Request{Message: "How similar are they?"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if resp.Status != StatusSuccess {
		t.Errorf("Status: got %s, want %s", resp.Status, StatusSuccess)
	}
	if resp.Response != client.reply {
		t.Errorf("Response: got %q", resp.Response)
	}
	if resp.ConversationID == "" {
		t.Error("Expected a conversation ID")
	}

	// Both turns stored.
	messages, ok := svc.Sessions().Get(resp.ConversationID)
	if !ok || len(messages) != 2 {
		t.Fatalf("Expected 2 stored messages, got %d (found=%v)", len(messages), ok)
	}
}

func TestSendMessageEmptyMessage(t *testing.T) {
	svc := newTestService(t, &fakeClient{reply: "x"})

	if _, err := svc.SendMessage(context.Background(), Request{Message: "  "}); err == nil {
		t.Fatal("Expected error for empty message")
	}
}

func TestSendMessageFallbackWithoutClient(t *testing.T) {
	svc := newTestService(t, nil)

	resp, err := svc.SendMessage(context.Background(), Request{Message: "hello"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Status != StatusFallback {
		t.Errorf("Status: got %s, want %s", resp.Status, StatusFallback)
	}
	if !strings.Contains(resp.Response, "currently unavailable") {
		t.Errorf("Fallback text missing: %q", resp.Response)
	}
}

func TestSendMessageFallbackOnError(t *testing.T) {
	svc := newTestService(t, &fakeClient{err: errors.New("rate limit")})

	contextJSON := `{"baseline":{"name":"ref.csv"},"selectedSample":{"name":"s1.csv"},"allSamples":[{"name":"s1.csv"},{"name":"s2.csv"}]}`
	resp, err := svc.SendMessage(context.Background(), Request{Message: "what now?", Context: contextJSON})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if resp.Status != StatusFallbackError {
		t.Errorf("Status: got %s, want %s", resp.Status, StatusFallbackError)
	}
	if !strings.Contains(resp.Response, "ref.csv") {
		t.Errorf("Fallback should name the baseline: %q", resp.Response)
	}
	if !strings.Contains(resp.Response, "2 sample dataset(s)") {
		t.Errorf("Fallback should count the samples: %q", resp.Response)
	}
}

func TestSendMessagePromptIncludesContextAndHistory(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	svc := newTestService(t, client)

	req := Request{
		Message: "compare them",
		Context: `{"baseline":{"name":"base.csv","stats":{"rows":100,"columns":2}},"graphType":"line"}`,
		History: []Message{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
		},
	}
	if _, err := svc.SendMessage(context.Background(), req); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	prompt := client.lastPrompt
	for _, want := range []string{
		"CURRENT SESSION",
		"Baseline Dataset: base.csv",
		"Current Graph Type: line",
		"Previous conversation:",
		"User: first question",
		"Assistant: first answer",
		"User: compare them",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestSendMessageHistoryWindow(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	svc := newTestService(t, client)

	history := make([]Message, 8)
	for i := range history {
		history[i] = Message{Role: "user", Content: "turn-" + string(rune('a'+i))}
	}

	if _, err := svc.SendMessage(context.Background(), Request{Message: "q", History: history}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Only the last 5 turns are included.
	if strings.Contains(client.lastPrompt, "turn-a") {
		t.Error("Oldest history turn should be excluded")
	}
	if !strings.Contains(client.lastPrompt, "turn-h") {
		t.Error("Newest history turn should be included")
	}
}

func TestQuickQuestion(t *testing.T) {
	client := &fakeClient{reply: "RMSE is the root mean squared error."}
	svc := newTestService(t, client)

	answer, err := svc.QuickQuestion(context.Background(), "What is RMSE?")
	if err != nil {
		t.Fatalf("QuickQuestion failed: %v", err)
	}

	if answer.Status != StatusSuccess {
		t.Errorf("Status: got %s, want %s", answer.Status, StatusSuccess)
	}
	if answer.Question != "What is RMSE?" {
		t.Errorf("Question echoed wrong: %q", answer.Question)
	}

	// Quick questions leave no conversation state.
	if svc.Sessions().Len() != 0 {
		t.Errorf("Expected no stored conversations, got %d", svc.Sessions().Len())
	}
}

func TestQuickQuestionFallback(t *testing.T) {
	svc := newTestService(t, &fakeClient{err: errors.New("boom")})

	answer, err := svc.QuickQuestion(context.Background(), "What is SSE?")
	if err != nil {
		t.Fatalf("QuickQuestion failed: %v", err)
	}
	if answer.Status != StatusFallback {
		t.Errorf("Status: got %s, want %s", answer.Status, StatusFallback)
	}
	if !strings.Contains(answer.Answer, "What is SSE?") {
		t.Errorf("Fallback should echo the question: %q", answer.Answer)
	}
}

func TestParseGraphContextPlainText(t *testing.T) {
	out := parseGraphContext("user is looking at run 42")
	if !strings.Contains(out, "Current session context:") {
		t.Errorf("Plain text context not wrapped: %q", out)
	}

	if parseGraphContext("   ") != "" {
		t.Error("Blank context should produce nothing")
	}
}

func TestParseGraphContextInvalidJSON(t *testing.T) {
	out := parseGraphContext("{not json")
	if !strings.Contains(out, "Current session context:") {
		t.Errorf("Invalid JSON should fall back to plain text: %q", out)
	}
}
