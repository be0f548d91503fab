package har

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// SensitiveFields are the portal's form and query keys that identify the
// customer or the session. Keys are compared lower-cased, without "_" or "-".
var SensitiveFields = map[string]bool{
	"ccpte":        true, // account number
	"cccryc":       true, // password as keypad codes
	"cccryc2":      true,
	"idtcm":        true,
	"sessiontoken": true,
	"jsessionid":   true,
}

// sensitiveFragments flag any other key containing them, such as the
// "motDePasse" or "typeAuthentification" fields of the regional sites.
var sensitiveFragments = []string{"password", "passwd", "motdepasse", "secret", "token", "session", "auth"}

// SensitiveHeaders are headers that should be redacted.
var SensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
}

// jsonPairRe matches a "key": value pair with a string or bare value.
var jsonPairRe = regexp.MustCompile(`"([^"]+)"\s*:\s*("[^"]*"|[^",}\]\s][^",}\]]*)`)

// SanitizeHAR redacts sensitive data from a HAR log.
// Returns a new HARLog with sensitive data replaced by [REDACTED].
func SanitizeHAR(log *HARLog) *HARLog {
	sanitized := &HARLog{
		Entries: make([]HAREntry, len(log.Entries)),
	}

	for i, entry := range log.Entries {
		sanitized.Entries[i] = HAREntry{
			Request:  sanitizeRequest(entry.Request),
			Response: sanitizeResponse(entry.Response),
		}
	}

	return sanitized
}

func sanitizeRequest(req HARRequest) HARRequest {
	return HARRequest{
		Method:  req.Method,
		URL:     sanitizeURL(req.URL),
		Headers: sanitizeHeaders(req.Headers),
		Body:    sanitizeBody(req.Body),
	}
}

func sanitizeResponse(resp HARResponse) HARResponse {
	text := resp.Content.Text
	// base64 bodies are opaque here; fixtures go through sanitize-fixtures
	if resp.Content.Encoding != "base64" {
		text = sanitizeBody(text)
	}

	return HARResponse{
		Status:  resp.Status,
		Headers: sanitizeHeaders(resp.Headers),
		Content: HARContent{
			MimeType: resp.Content.MimeType,
			Text:     text,
			Encoding: resp.Content.Encoding,
			Size:     resp.Content.Size,
		},
	}
}

func sanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	for key := range query {
		if isSensitiveKey(key) {
			query.Set(key, redacted)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

func sanitizeHeaders(headers []HARHeader) []HARHeader {
	if headers == nil {
		return nil
	}

	sanitized := make([]HARHeader, len(headers))

	for i, h := range headers {
		if SensitiveHeaders[strings.ToLower(h.Name)] || isSensitiveKey(h.Name) {
			sanitized[i] = HARHeader{Name: h.Name, Value: redacted}
			continue
		}
		sanitized[i] = h
	}

	return sanitized
}

func sanitizeBody(body string) string {
	if body == "" {
		return body
	}

	trimmed := strings.TrimSpace(body)

	// JSON bodies
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return sanitizeJSONBody(body)
	}

	// Form-encoded bodies (key=value&key2=value2); HTML pages are left alone
	if strings.Contains(body, "=") && !strings.HasPrefix(trimmed, "<") {
		return sanitizeFormBody(body)
	}

	return body
}

func sanitizeFormBody(body string) string {
	values, err := url.ParseQuery(body)
	if err != nil {
		return body
	}

	for key := range values {
		if isSensitiveKey(key) {
			values.Set(key, redacted)
		}
	}

	return values.Encode()
}

func sanitizeJSONBody(body string) string {
	return jsonPairRe.ReplaceAllStringFunc(body, func(pair string) string {
		key := jsonPairRe.FindStringSubmatch(pair)[1]
		if !isSensitiveKey(key) {
			return pair
		}
		return `"` + key + `": "` + redacted + `"`
	})
}

func isSensitiveKey(key string) bool {
	norm := keyNormalizer.Replace(strings.ToLower(key))
	if SensitiveFields[norm] {
		return true
	}
	for _, fragment := range sensitiveFragments {
		if strings.Contains(norm, fragment) {
			return true
		}
	}
	return false
}

var keyNormalizer = strings.NewReplacer("_", "", "-", "")
