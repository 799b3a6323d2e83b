package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/mapping"
)

// maxCRMBody caps how much of an upstream response is kept
const maxCRMBody = 64 << 10

// EndpointSource resolves the CRM ingestion URL at call time so settings
// changes apply without a restart.
type EndpointSource interface {
	CRMAPIURL(ctx context.Context) (string, error)
}

// CRMResult is what came back from one ingestion call
type CRMResult struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Success reports a 2xx answer
func (r *CRMResult) Success() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// BodyJSON returns the body as JSON; non-JSON bodies are wrapped in a string
func (r *CRMResult) BodyJSON() json.RawMessage {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if json.Valid(r.Body) {
		return json.RawMessage(r.Body)
	}
	quoted, _ := json.Marshal(string(r.Body))
	return quoted
}

type crmEnvelope struct {
	Submission crmSubmission `json:"submission"`
}

// Values is itself a JSON-encoded object carried as a string
type crmSubmission struct {
	FormID string `json:"form_id"`
	Values string `json:"values"`
}

// CRMProvider posts mapped submissions to the CRM ingestion API. One attempt
// per call, no retries.
type CRMProvider struct {
	Endpoint EndpointSource
	Client   *http.Client

	// DumpBodies includes lead payloads in debug request dumps
	DumpBodies bool
}

func NewCRMProvider(endpoint EndpointSource, timeout time.Duration) *CRMProvider {
	return &CRMProvider{
		Endpoint: endpoint,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit sends values under crmFormID. A non-2xx answer returns both the
// result and a ProviderError.
func (p *CRMProvider) Submit(ctx context.Context, values *mapping.Values, crmFormID string) (*CRMResult, error) {
	if crmFormID == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeConfigurationMissing,
			Message: constants.GetErrorMessage(constants.ErrCodeConfigurationMissing),
		}
	}
	if values == nil {
		values = mapping.NewValues()
	}

	encoded, err := json.Marshal(values)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeBadRequest,
			Message: "Failed to encode submission values",
			Err:     err,
		}
	}

	return p.doPost(ctx, crmEnvelope{
		Submission: crmSubmission{FormID: crmFormID, Values: string(encoded)},
	})
}

// TestConnection posts an empty submission to check the URL and form id
func (p *CRMProvider) TestConnection(ctx context.Context, crmFormID string) (*CRMResult, error) {
	return p.Submit(ctx, mapping.NewValues(), crmFormID)
}

func (p *CRMProvider) doPost(ctx context.Context, payload interface{}) (*CRMResult, error) {
	endpoint, err := p.Endpoint.CRMAPIURL(ctx)
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeConfigurationMissing,
			Message: "CRM API URL is not configured",
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeBadRequest,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	common.LogHTTPRequest(req, p.DumpBodies)

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, maxCRMBody))
	result := &CRMResult{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Duration:   time.Since(start),
	}
	if readErr != nil {
		return result, &ProviderError{
			Code:       constants.ErrCodeInvalidResponse,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        readErr,
		}
	}

	logging.Debug("CRM responded",
		"status", resp.StatusCode,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if !result.Success() {
		return result, buildHTTPError(resp.StatusCode, endpoint, common.Truncate(string(bodyBytes), 2048))
	}
	return result, nil
}

// String is used in logs
func (r *CRMResult) String() string {
	if r == nil {
		return "<no response>"
	}
	return fmt.Sprintf("HTTP %d (%s)", r.StatusCode, r.Duration)
}
