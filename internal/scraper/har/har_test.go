package har

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHAR_ChromeFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome.har")
	chrome := `{
  "log": {
    "version": "1.2",
    "creator": {"name": "WebInspector", "version": "537.36"},
    "entries": [
      {
        "request": {
          "method": "POST",
          "url": "https://bank.test/stb/entreeBam",
          "postData": {"mimeType": "application/x-www-form-urlencoded", "text": "canal=WEB"}
        },
        "response": {
          "status": 200,
          "content": {"mimeType": "text/html", "text": "<html></html>"}
        }
      }
    ]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(chrome), 0o600))

	log, err := LoadHAR(path)
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)

	entry := log.Entries[0]
	assert.Equal(t, "POST", entry.Request.Method)
	assert.Equal(t, "canal=WEB", entry.Request.Body)
	assert.Equal(t, 200, entry.Response.Status)
	assert.Equal(t, "<html></html>", entry.Response.Content.Text)
}

func TestSaveAndLoadHAR_SimplifiedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.har.json")
	want := &HARLog{Entries: []HAREntry{{
		Request:  HARRequest{Method: "POST", URL: "https://bank.test/stb/entreeBam", Body: "a=1"},
		Response: HARResponse{Status: 302, Headers: []HARHeader{{Name: "Location", Value: "/next"}}},
	}}}

	require.NoError(t, SaveHAR(path, want))

	got, err := LoadHAR(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadHAR_Errors(t *testing.T) {
	_, err := LoadHAR(filepath.Join(t.TempDir(), "missing.har"))
	assert.ErrorContains(t, err, "read HAR file")

	path := filepath.Join(t.TempDir(), "broken.har")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err = LoadHAR(path)
	assert.ErrorContains(t, err, "parse HAR JSON")
}

func TestHARContentBytes(t *testing.T) {
	assert.Equal(t, []byte("plain"), HARContent{Text: "plain"}.Bytes())
	assert.Equal(t, []byte{0xe9, 0x74, 0xe9}, HARContent{Text: "6XTp", Encoding: "base64"}.Bytes())
	assert.Equal(t, []byte("%%%"), HARContent{Text: "%%%", Encoding: "base64"}.Bytes())
}
