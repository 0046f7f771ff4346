package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func chatHandler(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected authorization header %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Messages) < 2 {
			t.Errorf("Expected system+user messages, got %d", len(req.Messages))
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}, "finish_reason": "stop"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func backendConfig(url string) domain.LLMBackendConfig {
	return domain.LLMBackendConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    2 * time.Second,
		RetryCount: 0,
		RateLimit:  100,
	}
}

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(chatHandler(t, "hello"))
	defer server.Close()

	client := NewClient("test", backendConfig(server.URL), testLogger())
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Expected %q, got %q", "hello", got)
	}
}

func TestClientCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("test", backendConfig(server.URL), testLogger())
	_, err := client.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected error")
	}

	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("Expected *BackendError, got %T", err)
	}
	if be.Reason != domain.FailureNetwork {
		t.Errorf("Expected network failure reason, got %s", be.Reason)
	}
}

func TestClientCompleteRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		chatHandler(t, "second try")(w, r)
	}))
	defer server.Close()

	config := backendConfig(server.URL)
	config.RetryCount = 2

	client := NewClient("test", config, testLogger())
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "second try" {
		t.Errorf("Expected retry result, got %q", got)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestDirectEngineAnalyze(t *testing.T) {
	server := httptest.NewServer(chatHandler(t, validPayload))
	defer server.Close()

	engine := NewDirectEngine(backendConfig(server.URL), nil, testLogger())
	req := &domain.AnalysisRequest{
		Snapshot: domain.BiometricSnapshot{SleepHours: 7.5, Steps: 8500, RestingHeartRate: 62, BMI: 23.5},
	}

	assessment, commentary, err := engine.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if assessment.Score != 90 || assessment.Grade != domain.GradeA {
		t.Errorf("Unexpected assessment %d/%s", assessment.Score, assessment.Grade)
	}
	if commentary == "" {
		t.Error("Expected commentary")
	}
	if engine.Name() != "direct_api" {
		t.Errorf("Unexpected engine name %s", engine.Name())
	}
}

func TestChainEngineTwoSteps(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			chatHandler(t, "Brief: strong sleep, active day.")(w, r)
			return
		}
		chatHandler(t, validPayload)(w, r)
	}))
	defer server.Close()

	engine := NewChainEngine(backendConfig(server.URL), nil, testLogger())
	req := &domain.AnalysisRequest{
		Snapshot: domain.BiometricSnapshot{SleepHours: 7.5, Steps: 8500},
	}

	assessment, _, err := engine.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 chained calls, got %d", calls)
	}
	if assessment.Score != 90 {
		t.Errorf("Expected score 90, got %d", assessment.Score)
	}
}

func TestFineTunedEngineParseFailure(t *testing.T) {
	server := httptest.NewServer(chatHandler(t, "not json at all"))
	defer server.Close()

	engine := NewFineTunedEngine(backendConfig(server.URL), nil, testLogger())
	req := &domain.AnalysisRequest{Snapshot: domain.BiometricSnapshot{Steps: 5000}}

	_, _, err := engine.Analyze(context.Background(), req)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	var be *domain.BackendError
	if !errors.As(err, &be) || be.Reason != domain.FailureParse {
		t.Errorf("Expected parse_failed backend error, got %v", err)
	}
}
