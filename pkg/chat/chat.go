// Package chat implements the AI assistant service: conversational messages
// grounded in the user's current graph analysis context, quick one-off
// questions, and a bounded conversation store.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/llm"
)

// Response statuses.
const (
	StatusSuccess       = "success"
	StatusFallback      = "fallback"
	StatusFallbackError = "fallback_error"
)

// Request is an incoming chat message.
type Request struct {
	Message string    `json:"message"`
	History []Message `json:"conversation_history,omitempty"`
	Context string    `json:"context,omitempty"` // current graph/analysis context from the frontend
}

// Response is the assistant's reply.
type Response struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id,omitempty"`
	Timestamp      string `json:"timestamp"`
	Status         string `json:"status"`
}

// QuickAnswer is the reply to a one-off question with no conversation state.
type QuickAnswer struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// Service answers chat requests. A nil LLM client is allowed; every request
// then receives the fallback response.
type Service struct {
	client   llm.Client
	sessions *SessionStore
}

// NewService creates a chat service over the given completion client and
// session store.
func NewService(client llm.Client, sessions *SessionStore) *Service {
	return &Service{client: client, sessions: sessions}
}

// Sessions exposes the conversation store for the HTTP layer.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// SendMessage answers a chat message. The response always succeeds at the
// service level: when the model is unavailable or errors, the reply is a
// deterministic fallback with the corresponding status.
func (s *Service) SendMessage(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, fmt.Errorf("message is required")
	}

	conversationID := "conv_" + uuid.NewString()
	hasContext := strings.TrimSpace(req.Context) != ""

	if s.client == nil {
		return Response{
			Response:       fallbackMessage(req, hasContext),
			ConversationID: conversationID,
			Timestamp:      time.Now().Format(time.RFC3339),
			Status:         StatusFallback,
		}, nil
	}

	prompt := buildChatPrompt(req, hasContext)
	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return Response{
			Response:       fallbackMessage(req, hasContext),
			ConversationID: conversationID,
			Timestamp:      time.Now().Format(time.RFC3339),
			Status:         StatusFallbackError,
		}, nil
	}

	now := time.Now().Format(time.RFC3339)
	s.sessions.Append(conversationID,
		Message{Role: "user", Content: req.Message, Timestamp: now},
		Message{Role: "assistant", Content: text, Timestamp: now},
	)

	return Response{
		Response:       text,
		ConversationID: conversationID,
		Timestamp:      now,
		Status:         StatusSuccess,
	}, nil
}

// QuickQuestion answers a one-off question without touching conversation
// state.
func (s *Service) QuickQuestion(ctx context.Context, question string) (QuickAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return QuickAnswer{}, fmt.Errorf("question is required")
	}

	answer := QuickAnswer{
		Question:  question,
		Timestamp: time.Now().Format(time.RFC3339),
		Status:    StatusSuccess,
	}

	if s.client == nil {
		answer.Answer = quickFallback(question)
		answer.Status = StatusFallback
		return answer, nil
	}

	prompt := quickSystemContext + "\n\nUser question: " + question
	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		answer.Answer = quickFallback(question)
		answer.Status = StatusFallback
		return answer, nil
	}

	answer.Answer = text
	return answer, nil
}

const contextualSystemContext = `You are an AI assistant specialized in data analysis and graph interpretation. You're currently helping a user analyze their datasets in a graphing application.

CURRENT SESSION: The user has loaded datasets and you have access to their current graph analysis context. Use this information to provide specific, relevant answers about their data.

Your capabilities include:
- Analyzing the current datasets (baseline vs samples)
- Interpreting statistical patterns and trends
- Providing insights on data comparisons
- Suggesting analysis approaches based on the data structure
- Answering specific questions about the loaded datasets
- Helping with data interpretation and scientific conclusions

When the user asks questions, refer to their specific datasets by name and provide concrete insights based on the actual data context provided.
Be technical and specific when discussing their data patterns, statistics, and comparisons.`

const generalSystemContext = `You are an AI assistant specialized in helping users with data analysis, graph interpretation, and scientific research.
You're part of a graphing application that allows users to compare baseline data with sample data.

Your capabilities include:
- Helping interpret graphs and data visualizations
- Providing insights on data trends and patterns
- Answering questions about statistical analysis
- Offering suggestions for data analysis workflows
- Explaining scientific concepts related to the data

Be helpful, accurate, and concise in your responses. When discussing data or graphs, be specific and technical when appropriate.
Note: The user hasn't loaded any datasets yet, so provide general guidance about data analysis and graphing.`

const quickSystemContext = `You are a helpful AI assistant for a data analysis and graphing application.
Provide concise, accurate answers to user questions about data analysis, statistics, and graph interpretation.`

// buildChatPrompt assembles the full prompt: system context, recent history,
// enhanced graph context, and the user's message.
func buildChatPrompt(req Request, hasContext bool) string {
	system := generalSystemContext
	if hasContext {
		system = contextualSystemContext
	}

	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")
	b.WriteString(formatHistory(req.History))
	b.WriteString(parseGraphContext(req.Context))
	b.WriteString("\nUser: ")
	b.WriteString(req.Message)
	return b.String()
}

// fallbackMessage builds the reply used when the model cannot answer. With
// graph context loaded, the reply names what the user has loaded so the
// response stays useful.
func fallbackMessage(req Request, hasContext bool) string {
	if !hasContext {
		return fmt.Sprintf("I'm sorry, the AI assistant is currently unavailable. This is a data analysis and graphing application where you can upload CSV files to compare baseline and sample data. Your question was: '%s'. Please try again later when the AI service is restored.", req.Message)
	}

	var b strings.Builder
	b.WriteString("I'm sorry, the AI assistant is currently unavailable. However, I can see you have datasets loaded: ")

	described := false
	trimmed := strings.TrimSpace(req.Context)
	if strings.HasPrefix(trimmed, "{") {
		if desc := describeLoadedData(trimmed); desc != "" {
			b.WriteString(desc)
			described = true
		}
	}
	if !described {
		b.WriteString("graph data is loaded for this session. ")
	}

	fmt.Fprintf(&b, "Your question was: '%s'. Please try again later for AI-powered analysis insights.", req.Message)
	return b.String()
}

func describeLoadedData(contextJSON string) string {
	var data map[string]any
	if err := json.Unmarshal([]byte(contextJSON), &data); err != nil {
		return ""
	}

	var b strings.Builder
	if baseline, ok := data["baseline"].(map[string]any); ok {
		fmt.Fprintf(&b, "Your baseline is '%s'. ", nameOf(baseline))
	}
	if sample, ok := data["selectedSample"].(map[string]any); ok {
		fmt.Fprintf(&b, "Currently analyzing '%s'. ", nameOf(sample))
	}
	if samples, ok := data["allSamples"].([]any); ok && len(samples) > 0 {
		fmt.Fprintf(&b, "You have %d sample dataset(s) for comparison. ", len(samples))
	}
	return b.String()
}

func quickFallback(question string) string {
	return fmt.Sprintf("I'm sorry, the AI assistant is currently unavailable. Your question was about '%s'. This application helps you analyze and compare data from CSV files. You can upload baseline and sample data to generate statistical comparisons and visualizations. Please try again later when the AI service is restored.", question)
}
