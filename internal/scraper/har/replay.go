package har

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Replayer serves recorded HTTP responses in place of the network. It is an
// http.RoundTripper, so it plugs into any client as its transport.
//
// The login protocol posts twice to the same URL, so entries sharing a key
// are served in recording order. Once a key is exhausted its last entry keeps
// being served.
type Replayer struct {
	mu sync.Mutex

	// exactMatches maps "METHOD full-url" to entries
	exactMatches map[string][]*HAREntry

	// pathMatches maps "METHOD scheme://host/path" to entries.
	// Used as fallback when exact match fails
	pathMatches map[string][]*HAREntry

	served map[string]int

	// servedTotal and unmatched count requests since creation
	servedTotal int
	unmatched   int

	// passthrough receives unmatched requests; nil makes them fail with a 404
	passthrough http.RoundTripper

	// verbose enables logging of matched/unmatched requests
	verbose bool
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithPassthrough allows unmatched requests to go to the real network.
// By default, unmatched requests get a 404.
func WithPassthrough(enabled bool) ReplayerOption {
	return func(r *Replayer) {
		if enabled {
			r.passthrough = http.DefaultTransport
		} else {
			r.passthrough = nil
		}
	}
}

// WithVerbose enables verbose logging of request matching.
func WithVerbose(enabled bool) ReplayerOption {
	return func(r *Replayer) {
		r.verbose = enabled
	}
}

// NewReplayer creates a replayer from a HAR log.
func NewReplayer(log *HARLog, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		exactMatches: make(map[string][]*HAREntry),
		pathMatches:  make(map[string][]*HAREntry),
		served:       make(map[string]int),
	}

	for _, opt := range opts {
		opt(r)
	}

	for i := range log.Entries {
		entry := &log.Entries[i]
		method := methodOrGet(entry.Request.Method)

		exactKey := method + " " + entry.Request.URL
		r.exactMatches[exactKey] = append(r.exactMatches[exactKey], entry)

		if parsed, err := url.Parse(entry.Request.URL); err == nil {
			pathKey := method + " " + pathOnly(parsed)
			r.pathMatches[pathKey] = append(r.pathMatches[pathKey], entry)
		}
	}

	return r
}

// RoundTrip implements http.RoundTripper.
func (r *Replayer) RoundTrip(req *http.Request) (*http.Response, error) {
	method := methodOrGet(req.Method)
	reqURL := req.URL.String()

	entry, found := r.next("exact:", method+" "+reqURL, r.exactMatches)
	if !found {
		entry, found = r.next("path:", method+" "+pathOnly(req.URL), r.pathMatches)
	}

	if !found {
		r.mu.Lock()
		r.unmatched++
		r.mu.Unlock()

		if r.verbose {
			slog.Debug("replayer: no match", "method", method, "url", reqURL)
		}
		if r.passthrough != nil {
			return r.passthrough.RoundTrip(req)
		}
		closeBody(req)
		return r.serveNotFound(req), nil
	}

	closeBody(req)

	if r.verbose {
		slog.Debug("replayer: matched", "method", method, "url", reqURL, "status", entry.Response.Status)
	}

	return serveRecordedResponse(req, entry), nil
}

// next pops the following entry for key, sticking to the last one once all
// recordings for that key have been served.
func (r *Replayer) next(prefix, key string, index map[string][]*HAREntry) (*HAREntry, bool) {
	entries, ok := index[key]
	if !ok || len(entries) == 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.served[prefix+key]
	r.served[prefix+key] = n + 1
	r.servedTotal++
	if n >= len(entries) {
		n = len(entries) - 1
	}

	return entries[n], true
}

func serveRecordedResponse(req *http.Request, entry *HAREntry) *http.Response {
	resp := entry.Response
	body := resp.Content.Bytes()

	header := make(http.Header)
	for _, h := range resp.Headers {
		name := strings.ToLower(h.Name)
		// The body is stored decoded and re-measured below
		if name == "content-encoding" || name == "content-length" {
			continue
		}
		header.Add(h.Name, h.Value)
	}
	if header.Get("Content-Type") == "" && resp.Content.MimeType != "" {
		header.Set("Content-Type", resp.Content.MimeType)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.Status, http.StatusText(resp.Status)),
		StatusCode:    resp.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func (r *Replayer) serveNotFound(req *http.Request) *http.Response {
	body := []byte(`{"error": "no recording found for URL"}`)

	if r.verbose {
		slog.Debug("replayer: 404 not found", "url", req.URL.String())
	}

	return &http.Response{
		Status:        "404 Not Found",
		StatusCode:    http.StatusNotFound,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// Stats returns the size of the replayer's index along with how many
// requests it served from the recording and how many matched nothing.
func (r *Replayer) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return map[string]int{
		"exact_matches": len(r.exactMatches),
		"path_matches":  len(r.pathMatches),
		"served":        r.servedTotal,
		"unmatched":     r.unmatched,
	}
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

func pathOnly(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

func methodOrGet(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}
