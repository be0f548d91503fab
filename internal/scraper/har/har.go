// Package har records, sanitizes and replays the HTTP exchanges of a bank
// session in a simplified HAR (HTTP Archive) format.
package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"testing"
)

// HARLog is a simplified HAR log: the ordered exchanges of one session.
type HARLog struct {
	Entries []HAREntry `json:"entries"`
}

// HAREntry represents a single HTTP request/response pair.
type HAREntry struct {
	Request  HARRequest  `json:"request"`
	Response HARResponse `json:"response"`
}

// HARRequest represents an HTTP request. Body holds the form-encoded payload.
type HARRequest struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Headers []HARHeader `json:"headers,omitempty"`
	Body    string      `json:"body,omitempty"`
}

// HARResponse represents an HTTP response.
type HARResponse struct {
	Status  int         `json:"status"`
	Headers []HARHeader `json:"headers,omitempty"`
	Content HARContent  `json:"content"`
}

// HARHeader represents an HTTP header key-value pair.
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARContent represents the response body content.
type HARContent struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`               // Plain text or base64 encoded
	Encoding string `json:"encoding,omitempty"` // "base64" for non UTF-8 bodies (ISO-8859-1 pages)
	Size     int    `json:"size,omitempty"`
}

// Bytes returns the raw body, decoding base64 content when needed.
func (c HARContent) Bytes() []byte {
	if c.Encoding != "base64" {
		return []byte(c.Text)
	}
	body, err := base64.StdEncoding.DecodeString(c.Text)
	if err != nil {
		return []byte(c.Text)
	}
	return body
}

// ============================================================================
// Chrome DevTools HAR 1.2 Format Support
// ============================================================================

// ChromeHAR represents the full HAR 1.2 format exported by Chrome DevTools.
// Chrome wraps entries in a "log" object and uses postData instead of body.
type ChromeHAR struct {
	Log ChromeHARLog `json:"log"`
}

// ChromeHARLog is the log wrapper in Chrome's HAR format.
type ChromeHARLog struct {
	Version string           `json:"version"`
	Entries []ChromeHAREntry `json:"entries"`
}

// ChromeHAREntry represents a single request/response in Chrome's format.
type ChromeHAREntry struct {
	Request  ChromeHARRequest `json:"request"`
	Response HARResponse      `json:"response"`
}

// ChromeHARRequest represents an HTTP request in Chrome's format.
type ChromeHARRequest struct {
	Method   string       `json:"method"`
	URL      string       `json:"url"`
	Headers  []HARHeader  `json:"headers,omitempty"`
	PostData *HARPostData `json:"postData,omitempty"`
}

// HARPostData represents POST body data in Chrome's HAR format.
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// LoadHAR reads a HAR file from the given path.
// A recording exported from the browser's DevTools (with the "log" wrapper)
// is converted to the simplified format.
func LoadHAR(path string) (*HARLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read HAR file: %w", err)
	}

	var chromeHAR ChromeHAR
	if err := json.Unmarshal(data, &chromeHAR); err == nil && len(chromeHAR.Log.Entries) > 0 {
		return convertChromeHAR(&chromeHAR), nil
	}

	var log HARLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse HAR JSON: %w", err)
	}

	return &log, nil
}

func convertChromeHAR(chrome *ChromeHAR) *HARLog {
	entries := make([]HAREntry, len(chrome.Log.Entries))

	for i, ce := range chrome.Log.Entries {
		var body string
		if ce.Request.PostData != nil {
			body = ce.Request.PostData.Text
		}

		entries[i] = HAREntry{
			Request: HARRequest{
				Method:  ce.Request.Method,
				URL:     ce.Request.URL,
				Headers: ce.Request.Headers,
				Body:    body,
			},
			Response: ce.Response,
		}
	}

	return &HARLog{Entries: entries}
}

// SaveHAR writes a HAR log to the given path with pretty formatting.
func SaveHAR(path string, log *HARLog) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal HAR: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write HAR file: %w", err)
	}

	return nil
}

// MustLoadHAR loads a HAR file and fails the test if it cannot be loaded.
func MustLoadHAR(t *testing.T, path string) *HARLog {
	t.Helper()

	log, err := LoadHAR(path)
	if err != nil {
		t.Fatalf("failed to load HAR file %s: %v", path, err)
	}

	return log
}
