package har

import (
	"encoding/base64"
	"net/http"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// Recorder captures the exchanges of a resty client into a HAR log. Attach
// its Middleware with client.OnAfterResponse.
//
// Response bodies are kept as-is: landing pages hold account numbers and
// balances, so review a recording before committing it.
type Recorder struct {
	mu  sync.Mutex
	log HARLog
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Middleware returns a resty response hook that records every response.
func (r *Recorder) Middleware() resty.ResponseMiddleware {
	return func(_ *resty.Client, res *resty.Response) error {
		r.Record(res)
		return nil
	}
}

// Record appends one exchange to the log.
func (r *Recorder) Record(res *resty.Response) {
	req := res.Request

	reqURL := req.URL
	var reqHeaders http.Header = req.Header
	if req.RawRequest != nil {
		reqURL = req.RawRequest.URL.String()
		reqHeaders = req.RawRequest.Header
	}

	entry := HAREntry{
		Request: HARRequest{
			Method:  req.Method,
			URL:     reqURL,
			Headers: toHARHeaders(reqHeaders),
			Body:    req.FormData.Encode(),
		},
		Response: HARResponse{
			Status:  res.StatusCode(),
			Headers: toHARHeaders(res.Header()),
			Content: toHARContent(res.Header().Get("Content-Type"), res.Body()),
		},
	}

	r.mu.Lock()
	r.log.Entries = append(r.log.Entries, entry)
	r.mu.Unlock()
}

// Log returns a sanitized copy of everything recorded so far.
func (r *Recorder) Log() *HARLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	return SanitizeHAR(&r.log)
}

// Save writes the sanitized recording to path.
func (r *Recorder) Save(path string) error {
	return SaveHAR(path, r.Log())
}

func toHARHeaders(h http.Header) []HARHeader {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []HARHeader
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, HARHeader{Name: name, Value: v})
		}
	}
	return out
}

func toHARContent(mimeType string, body []byte) HARContent {
	content := HARContent{MimeType: mimeType, Size: len(body)}
	if utf8.Valid(body) {
		content.Text = string(body)
	} else {
		content.Text = base64.StdEncoding.EncodeToString(body)
		content.Encoding = "base64"
	}
	return content
}
