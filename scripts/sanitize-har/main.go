// sanitize-har removes sensitive data from HAR files before committing.
//
// Usage:
//
//	go run ./scripts/sanitize-har -scenario=login-success
//	go run ./scripts/sanitize-har -input=recording.har.json -output=sanitized.har.json
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grez-lucas/ca-balance/internal/scraper/har"
)

func main() {
	// Conventional path flags
	bankDir := flag.String("bank", "creditagricole", "Bank package directory")
	scenario := flag.String("scenario", "", "Scenario name (e.g., login-success)")

	// Direct path flags
	inputPath := flag.String("input", "", "Input HAR file path")
	outputPath := flag.String("output", "", "Output HAR file path (defaults to input path)")

	dryRun := flag.Bool("dry-run", false, "Show what would be redacted without modifying")

	flag.Parse()

	var inPath, outPath string

	switch {
	case *scenario != "":
		// internal/scraper/bank/{bank}/testdata/recordings/{scenario}.har.json
		inPath = filepath.Join("internal", "scraper", "bank", *bankDir, "testdata", "recordings", *scenario+".har.json")
		outPath = inPath
	case *inputPath != "":
		inPath = *inputPath
		outPath = *inputPath
		if *outputPath != "" {
			outPath = *outputPath
		}
	default:
		printUsage()
		os.Exit(1)
	}

	if _, err := os.Stat(inPath); os.IsNotExist(err) {
		fmt.Printf("Error: Input file not found: %s\n", inPath)
		os.Exit(1)
	}

	fmt.Printf("Loading HAR file: %s\n", inPath)

	// Chrome DevTools exports are converted to the simplified format
	log, err := har.LoadHAR(inPath)
	if err != nil {
		fmt.Printf("Error loading HAR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d entries\n", len(log.Entries))

	sanitized := har.SanitizeHAR(log)
	redactions := diff(log, sanitized)
	fmt.Printf("Redacted %d sensitive values\n", len(redactions))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes written.")
		printRedactions(redactions)
		return
	}

	if err := har.SaveHAR(outPath, sanitized); err != nil {
		fmt.Printf("Error saving HAR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sanitized HAR saved to: %s\n", outPath)
}

func printUsage() {
	fmt.Println("sanitize-har - Remove sensitive data from HAR files before committing")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run ./scripts/sanitize-har -scenario=login-success")
	fmt.Println("  go run ./scripts/sanitize-har -input=recording.har.json")
	fmt.Println("  go run ./scripts/sanitize-har -input=in.har.json -output=out.har.json")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -bank      Bank package directory (default creditagricole)")
	fmt.Println("  -scenario  Scenario name (login-success, login-rejected, ...)")
	fmt.Println("  -input     Input HAR file path")
	fmt.Println("  -output    Output HAR file path (defaults to input)")
	fmt.Println("  -dry-run   Show redactions without modifying file")
}

type redaction struct {
	entry  int
	method string
	url    string
	what   string
}

func diff(original, sanitized *har.HARLog) []redaction {
	var out []redaction

	for i := range original.Entries {
		if i >= len(sanitized.Entries) {
			break
		}
		orig := original.Entries[i]
		san := sanitized.Entries[i]

		add := func(what string) {
			out = append(out, redaction{entry: i + 1, method: orig.Request.Method, url: orig.Request.URL, what: what})
		}

		if orig.Request.URL != san.Request.URL {
			add("URL query parameters")
		}
		for j, h := range orig.Request.Headers {
			if j < len(san.Request.Headers) && h.Value != san.Request.Headers[j].Value {
				add(fmt.Sprintf("request header %q", h.Name))
			}
		}
		if orig.Request.Body != san.Request.Body {
			add("request form fields")
		}
		for j, h := range orig.Response.Headers {
			if j < len(san.Response.Headers) && h.Value != san.Response.Headers[j].Value {
				add(fmt.Sprintf("response header %q", h.Name))
			}
		}
		if orig.Response.Content.Text != san.Response.Content.Text {
			add("response body")
		}
	}

	return out
}

func printRedactions(redactions []redaction) {
	fmt.Println("\nRedaction Summary:")
	fmt.Println("==================")

	last := 0
	for _, r := range redactions {
		if r.entry != last {
			fmt.Printf("\nEntry %d: %s %s\n", r.entry, r.method, truncateURL(r.url))
			last = r.entry
		}
		fmt.Printf("  - %s redacted\n", r.what)
	}
}

func truncateURL(url string) string {
	if len(url) > 80 {
		return url[:77] + "..."
	}
	return url
}
