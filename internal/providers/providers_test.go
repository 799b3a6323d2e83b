package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/mapping"
)

type staticEndpoint string

func (s staticEndpoint) CRMAPIURL(context.Context) (string, error) { return string(s), nil }

func TestCRMProvider_Submit_Success(t *testing.T) {
	var got crmEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("Failed to decode envelope: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"sub_123"}`))
	}))
	defer server.Close()

	provider := NewCRMProvider(staticEndpoint(server.URL), 5*time.Second)
	values := mapping.ValuesFromPairs("FieldConfigID-b", "x@y.z", "FieldConfigID-a", "Jo")

	result, err := provider.Submit(context.Background(), values, "FormConfigID-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Success() || result.StatusCode != http.StatusCreated {
		t.Errorf("Expected 201 success, got %v", result)
	}
	if string(result.BodyJSON()) != `{"id":"sub_123"}` {
		t.Errorf("Unexpected body: %s", result.BodyJSON())
	}

	if got.Submission.FormID != "FormConfigID-1" {
		t.Errorf("Expected form id in envelope, got %s", got.Submission.FormID)
	}
	// values travel as a JSON string preserving key order
	if got.Submission.Values != `{"FieldConfigID-b":"x@y.z","FieldConfigID-a":"Jo"}` {
		t.Errorf("Unexpected values string: %s", got.Submission.Values)
	}
}

func TestCRMProvider_Submit_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unknown form"}`))
	}))
	defer server.Close()

	provider := NewCRMProvider(staticEndpoint(server.URL), 5*time.Second)
	result, err := provider.Submit(context.Background(), mapping.NewValues(), "FormConfigID-1")

	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	pErr := AsProviderError(err)
	if pErr == nil || pErr.Code != constants.ErrCodeBadRequest || pErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Unexpected provider error: %+v", pErr)
	}
	if result == nil || string(result.BodyJSON()) != `{"error":"unknown form"}` {
		t.Errorf("Expected the upstream body to be returned, got %v", result)
	}
}

func TestCRMProvider_Submit_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	provider := NewCRMProvider(staticEndpoint(server.URL), 5*time.Second)
	result, err := provider.Submit(context.Background(), mapping.NewValues(), "FormConfigID-1")

	if err == nil {
		t.Fatal("Expected error for 503 response")
	}
	if calls != 1 {
		t.Errorf("Expected exactly one call, got %d", calls)
	}
	if string(result.BodyJSON()) != `"maintenance"` {
		t.Errorf("Expected non-JSON body to be wrapped, got %s", result.BodyJSON())
	}
}

func TestCRMProvider_Submit_MissingFormID(t *testing.T) {
	provider := NewCRMProvider(staticEndpoint("http://unused"), time.Second)
	_, err := provider.Submit(context.Background(), nil, "")

	pErr := AsProviderError(err)
	if pErr == nil || pErr.Code != constants.ErrCodeConfigurationMissing {
		t.Errorf("Expected configuration missing, got %v", err)
	}
}

func TestCRMProvider_TestConnection_PostsEmptyValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env crmEnvelope
		json.NewDecoder(r.Body).Decode(&env)
		if env.Submission.Values != "{}" {
			t.Errorf("Expected empty values object, got %s", env.Submission.Values)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := NewCRMProvider(staticEndpoint(server.URL), 5*time.Second)
	result, err := provider.TestConnection(context.Background(), "FormConfigID-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.BodyJSON() != nil {
		t.Errorf("Expected empty body to give nil JSON, got %s", result.BodyJSON())
	}
}

func TestCRMProvider_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider := NewCRMProvider(staticEndpoint(url), time.Second)
	result, err := provider.Submit(context.Background(), mapping.NewValues(), "FormConfigID-1")

	if result != nil {
		t.Errorf("Expected no result, got %v", result)
	}
	if pErr := AsProviderError(err); pErr == nil || pErr.Code != constants.ErrCodeNetworkError {
		t.Errorf("Expected network error, got %v", err)
	}
}

func TestAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Unexpected auth header: %s", auth)
		}
		var req chatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("Unexpected request: %+v", req)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"form_name\":\"Demo\"}"}}]}`))
	}))
	defer server.Close()

	provider := NewAIProvider(5 * time.Second)
	out, err := provider.Complete(context.Background(),
		common.AISettings{APIURL: server.URL + "/v1/", APIKey: "sk-test", Model: "test-model"},
		[]ChatMessage{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != `{"form_name":"Demo"}` {
		t.Errorf("Unexpected content: %s", out)
	}
}

func TestAIProvider_Complete_Errors(t *testing.T) {
	provider := NewAIProvider(time.Second)
	if _, err := provider.Complete(context.Background(), common.AISettings{}, nil); AsProviderError(err).Code != constants.ErrCodeConfigurationMissing {
		t.Errorf("Expected configuration missing, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := provider.Complete(context.Background(), common.AISettings{APIURL: server.URL, APIKey: "bad"}, nil)
	if pErr := AsProviderError(err); pErr == nil || pErr.Code != constants.ErrCodeAuthenticationFailed {
		t.Errorf("Expected authentication failure, got %v", err)
	}
}
