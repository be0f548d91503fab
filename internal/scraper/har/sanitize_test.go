package har

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHAR_LoginForm(t *testing.T) {
	form := url.Values{
		"CCPTE":   {"12345678901"},
		"CCCRYC":  {"03,11,07,22,19,05"},
		"CCCRYC2": {"000000"},
		"canal":   {"WEB"},
		"token":   {"abc123"},
	}

	log := &HARLog{Entries: []HAREntry{{
		Request: HARRequest{
			Method: "POST",
			URL:    "https://bank.test/stb/entreeBam?sessionid=xyz&lang=fr",
			Headers: []HARHeader{
				{Name: "Cookie", Value: "JSESSIONID=secret"},
				{Name: "User-Agent", Value: "Mozilla/5.0"},
			},
			Body: form.Encode(),
		},
		Response: HARResponse{
			Status:  200,
			Headers: []HARHeader{{Name: "Set-Cookie", Value: "JSESSIONID=secret; Path=/"}},
			Content: HARContent{Text: "<html><form><input name=token value=abc></form></html>"},
		},
	}}}

	sanitized := SanitizeHAR(log)
	require.Len(t, sanitized.Entries, 1)
	req := sanitized.Entries[0].Request

	body, err := url.ParseQuery(req.Body)
	require.NoError(t, err)
	assert.Equal(t, redacted, body.Get("CCPTE"))
	assert.Equal(t, redacted, body.Get("CCCRYC"))
	assert.Equal(t, redacted, body.Get("CCCRYC2"))
	assert.Equal(t, redacted, body.Get("token"))
	assert.Equal(t, "WEB", body.Get("canal"))

	parsed, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, redacted, parsed.Query().Get("sessionid"))
	assert.Equal(t, "fr", parsed.Query().Get("lang"))

	assert.Equal(t, redacted, req.Headers[0].Value)
	assert.Equal(t, "Mozilla/5.0", req.Headers[1].Value)

	resp := sanitized.Entries[0].Response
	assert.Equal(t, redacted, resp.Headers[0].Value)
	// HTML bodies are not form bodies
	assert.Equal(t, "<html><form><input name=token value=abc></form></html>", resp.Content.Text)

	// the original log is untouched
	assert.Equal(t, "JSESSIONID=secret", log.Entries[0].Request.Headers[0].Value)
}

func TestSanitizeHAR_Base64BodyUntouched(t *testing.T) {
	log := &HARLog{Entries: []HAREntry{{
		Response: HARResponse{Content: HARContent{Text: "dG9rZW49YWJj", Encoding: "base64"}},
	}}}

	assert.Equal(t, "dG9rZW49YWJj", SanitizeHAR(log).Entries[0].Response.Content.Text)
}

func TestSanitizeJSONBody(t *testing.T) {
	got := sanitizeBody(`{"password": "hunter2", "CCPTE":1234, "name": "Livret A", "session_token": "abc"}`)

	assert.Contains(t, got, `"password": "[REDACTED]"`)
	assert.Contains(t, got, `"CCPTE": "[REDACTED]"`)
	assert.Contains(t, got, `"session_token": "[REDACTED]"`)
	assert.Contains(t, got, `"name": "Livret A"`)
	assert.NotContains(t, got, "hunter2")
	assert.NotContains(t, got, "1234")
	assert.NotContains(t, got, `"[REDACTED]""`)
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"CCPTE", true},
		{"ccpte", true},
		{"CCCRYC", true},
		{"CCCRYC2", true},
		{"CCCRYC3", false},
		{"XCCPTE", false},
		{"motDePasse", true},
		{"mot_de_passe", true},
		{"idtcm", true},
		{"session_token", true},
		{"X-CSRF-Token", true},
		{"act", false},
		{"hauteur_ecran", false},
		{"JSESSIONID", true},
		{"canal", false},
		{"typeAuthentification", true},
		{"largeur_ecran", false},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, isSensitiveKey(tc.key))
		})
	}
}
