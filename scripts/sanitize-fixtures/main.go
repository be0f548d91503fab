// sanitize-fixtures redacts personal data from captured HTML fixtures.
//
// Usage:
//
//	go run ./scripts/sanitize-fixtures [-bank=creditagricole] [-dry-run]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

type pattern struct {
	re          *regexp.Regexp
	replacement string
	description string
}

var sanitizePatterns = []pattern{
	// Account numbers in the summary table, e.g. <a class="libelle3" ...>12345678901</a>
	{
		regexp.MustCompile(`(class="libelle3"[^>]*>\s*)\d{6,11}`),
		"${1}00000000000",
		"Account number",
	},

	// Account number typed in the login form
	{
		regexp.MustCompile(`(?i)(name="CCPTE"[^>]*value=")\d+`),
		"${1}",
		"Login account number",
	},

	// Holder name in the page header ("M. DUPONT JEAN", "MME MARTIN MARIE")
	{
		regexp.MustCompile(`\b(M\.|MME|MLLE|Monsieur|Madame)\s+[A-ZÀ-Ý][A-ZÀ-Ý' -]+[A-ZÀ-Ý]`),
		"$1 NOM PRENOM",
		"Holder name",
	},

	// Session tokens in hidden inputs
	{
		regexp.MustCompile(`(?i)(name="[^"]*(?:token|session|idtcm)[^"]*"[^>]*value=")[^"]+`),
		"${1}REDACTED",
		"Hidden session field",
	},

	// Session ids in links and scripts
	{
		regexp.MustCompile(`(?i)(jsessionid|token|session)(["\s:=]+["']?)[a-zA-Z0-9_.-]{16,}`),
		`${1}${2}REDACTED`,
		"Token",
	},

	// Cookies in HTML
	{
		regexp.MustCompile(`(?i)document\.cookie\s*=\s*["'][^"']+["']`),
		`document.cookie="REDACTED"`,
		"Cookie",
	},
}

func main() {
	bankDir := flag.String("bank", "creditagricole", "Bank package directory")
	dryRun := flag.Bool("dry-run", false, "Show what would be changed without modifying files")
	flag.Parse()

	fixturesDir := filepath.Join("internal", "scraper", "bank", *bankDir, "testdata", "fixtures")

	files, err := filepath.Glob(filepath.Join(fixturesDir, "*.html"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No HTML files found in %s\n", fixturesDir)
		os.Exit(1)
	}

	fmt.Printf("Sanitizing fixtures in %s\n", fixturesDir)
	if *dryRun {
		fmt.Println("    (DRY RUN - no files will be modified)")
	}
	fmt.Println()

	for _, file := range files {
		sanitizeFile(file, *dryRun)
	}

	fmt.Println()
	fmt.Println("Sanitization complete!")
	if *dryRun {
		fmt.Println("    Run without -dry-run to apply changes")
	}
}

// sanitize applies every pattern and describes what matched.
func sanitize(content string) (string, []string) {
	var changes []string

	for _, p := range sanitizePatterns {
		matches := p.re.FindAllString(content, -1)
		if len(matches) == 0 {
			continue
		}
		content = p.re.ReplaceAllString(content, p.replacement)
		changes = append(changes, fmt.Sprintf("  - %s: %d matched", p.description, len(matches)))
	}

	return content, changes
}

func sanitizeFile(path string, dryRun bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", path, err)
		return
	}

	sanitized, changes := sanitize(string(content))
	filename := filepath.Base(path)

	if len(changes) == 0 {
		fmt.Printf("%s: No sensitive data found\n", filename)
		return
	}

	fmt.Printf("%s: Found sensitive data\n", filename)
	for _, change := range changes {
		fmt.Println(change)
	}

	if dryRun {
		return
	}

	if err := os.WriteFile(path, []byte(sanitized), 0o644); err != nil {
		fmt.Printf("    Error writing %s: %v\n", path, err)
		return
	}
	fmt.Println("    Sanitized and saved")
}
