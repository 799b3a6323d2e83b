package common

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"

	"leadcapture/formbridge/internal/logging"
)

const maxDumpBytes = 4096

// secretHeaders never reach the log
var secretHeaders = []string{"Authorization", "Cookie", "X-Api-Key"}

// LogHTTPRequest dumps an outbound CRM request when debug logging is on.
// Lead payloads carry contact details, so the body is only dumped outside
// production, and the request body is restored for sending either way.
func LogHTTPRequest(req *http.Request, withBody bool) {
	if !logging.DebugEnabled() {
		return
	}

	var bodyCopy []byte
	if req.Body != nil {
		bodyCopy, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(bodyCopy))
	}

	clone := req.Clone(req.Context())
	for _, h := range secretHeaders {
		if clone.Header.Get(h) != "" {
			clone.Header.Set(h, "[redacted]")
		}
	}
	if withBody && bodyCopy != nil {
		clone.Body = io.NopCloser(bytes.NewReader(bodyCopy))
	} else {
		clone.Body = nil
		clone.ContentLength = 0
	}

	dump, err := httputil.DumpRequestOut(clone, withBody)
	if err != nil {
		logging.Debug("failed to dump outbound request", "error", err)
		return
	}
	logging.Debug("outbound request",
		"dump", Truncate(strings.TrimSpace(string(dump)), maxDumpBytes),
		"body_bytes", len(bodyCopy),
	)
}
