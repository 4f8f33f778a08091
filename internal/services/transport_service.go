package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"aliadodoc/internal/logger"
)

// maxCapturedBody bounds how much of an error response body is kept.
const maxCapturedBody = 4096

// TransportService captures a summary of the last HTTP exchange with the
// Gemini API. Request bodies are never captured since they carry user files.
type TransportService struct {
	initialized bool
	base        http.RoundTripper

	mutex        sync.RWMutex
	capturedData string
}

// NewTransportService creates a new TransportService. A nil base uses http.DefaultTransport.
func NewTransportService(base http.RoundTripper) *TransportService {
	if base == nil {
		base = http.DefaultTransport
	}
	return &TransportService{base: base}
}

// Name returns the service name "transport" for registration.
func (d *TransportService) Name() string {
	return "transport"
}

// Initialize sets up the TransportService for operation.
func (d *TransportService) Initialize() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.initialized = true
	d.capturedData = ""
	return nil
}

// RoundTripper returns an http.RoundTripper that records every exchange.
func (d *TransportService) RoundTripper() http.RoundTripper {
	return &capturingTransport{base: d.base, service: d}
}

// LastExchange returns the last captured exchange as JSON, or "" if none.
func (d *TransportService) LastExchange() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.capturedData
}

func (d *TransportService) setCapturedData(data string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.capturedData = data
}

// capturingTransport implements http.RoundTripper with exchange capture.
type capturingTransport struct {
	base    http.RoundTripper
	service *TransportService
}

// RoundTrip implements http.RoundTripper.
func (ct *capturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	requestData := map[string]interface{}{
		"method":  req.Method,
		"url":     sanitizeURL(req),
		"headers": sanitizeHeaders(req.Header),
	}

	resp, err := ct.base.RoundTrip(req)
	elapsed := time.Since(startTime)

	responseData := map[string]interface{}{}
	if err != nil {
		responseData["error"] = err.Error()
	} else {
		responseData["status_code"] = resp.StatusCode
		responseData["status"] = resp.Status
		if resp.StatusCode >= http.StatusBadRequest && resp.Body != nil {
			responseData["body"] = captureBody(resp)
		}
	}

	ct.store(requestData, responseData, startTime, elapsed)
	logger.Debug("HTTP exchange", "method", req.Method, "path", req.URL.Path, "duration_ms", elapsed.Milliseconds())
	return resp, err
}

func (ct *capturingTransport) store(requestData, responseData map[string]interface{}, startTime time.Time, elapsed time.Duration) {
	debugData := map[string]interface{}{
		"http_request":  requestData,
		"http_response": responseData,
		"timing": map[string]interface{}{
			"request_time": startTime.Format(time.RFC3339),
			"duration_ms":  elapsed.Milliseconds(),
		},
	}

	jsonData, err := json.Marshal(debugData)
	if err != nil {
		logger.Error("Failed to marshal debug data", "error", err)
		ct.service.setCapturedData(`{"error": "failed to marshal debug data"}`)
		return
	}
	ct.service.setCapturedData(string(jsonData))
}

// captureBody reads the response body and restores it for the client.
func captureBody(resp *http.Response) interface{} {
	bodyBytes, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	if err != nil {
		return "failed to read response body"
	}
	if len(bodyBytes) > maxCapturedBody {
		return string(bodyBytes[:maxCapturedBody]) + "..."
	}
	var jsonBody interface{}
	if json.Unmarshal(bodyBytes, &jsonBody) == nil {
		return jsonBody
	}
	return string(bodyBytes)
}

// sanitizeURL masks the API key query parameter.
func sanitizeURL(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "***[MASKED]***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// sanitizeHeaders masks credential-bearing headers.
func sanitizeHeaders(headers http.Header) map[string]interface{} {
	sanitized := make(map[string]interface{})

	for name, values := range headers {
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, "authorization") ||
			strings.Contains(lowerName, "api-key") ||
			strings.Contains(lowerName, "token") {
			sanitized[name] = []string{"***[MASKED]***"}
			continue
		}
		sanitized[name] = values
	}

	return sanitized
}
