// capture-fixtures opens a visible browser on the bank portal and saves the
// pages the scraper parses as HTML fixtures.
//
// Usage:
//
//	go run ./scripts/capture-fixtures
//	go run ./scripts/capture-fixtures -account=12345678901 -human
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank/creditagricole"
	"github.com/grez-lucas/ca-balance/internal/scraper/browser"
	"golang.org/x/term"
)

type pageCapture struct {
	Name         string
	Instructions string
	// login is set on the step that submits the login form
	login bool
}

var capturePages = []pageCapture{
	{Name: "login_page", Instructions: "Open the regional site and click \"Accéder à mes comptes\" (don't login yet)"},
	{Name: "landing_page", Instructions: "Login with VALID credentials and wait for the account summary", login: true},
	{Name: "landing_empty", Instructions: "Logout, go back to the login page and submit a WRONG personal code (or skip)", login: true},
}

func main() {
	bankDir := flag.String("bank", "creditagricole", "Bank package directory")
	outputDir := flag.String("output", "", "Output directory (default: internal/scraper/bank/{bank}/testdata/fixtures)")
	bin := flag.String("bin", "", "Chrome binary (default: looked up by Rod)")
	startURL := flag.String("url", creditagricole.DefaultOriginURL, "Page opened at start")
	account := flag.String("account", "", "Fill the login form automatically with this account number")
	human := flag.Bool("human", false, "Type and click with human-like delays")
	flag.Parse()

	outDir := *outputDir
	if outDir == "" {
		outDir = filepath.Join("internal", "scraper", "bank", *bankDir, "testdata", "fixtures")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	var password string
	if *account != "" {
		fmt.Print("Personal code: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			fmt.Printf("Error reading personal code: %v\n", err)
			os.Exit(1)
		}
		password = strings.TrimSpace(string(secret))
	}

	fmt.Println("BANK FIXTURE CAPTURE TOOL")
	fmt.Printf("  Bank:   %s\n", *bankDir)
	fmt.Printf("  Output: %s\n\n", outDir)

	b, err := browser.Launch(browser.LaunchOptions{Bin: *bin})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer b.MustClose()

	page, err := browser.NewPage(b)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := page.Navigate(*startURL); err != nil {
		fmt.Printf("Error opening %s: %v\n", *startURL, err)
	}

	typeText := browser.TypeFast
	if *human {
		typeText = browser.TypeHuman
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Instructions:")
	fmt.Println("   - A browser window has opened")
	fmt.Println("   - Press ENTER after completing each step")
	fmt.Println("   - Type 'skip' to skip a page, 'quit' to exit")
	if *account != "" {
		fmt.Println("   - Login steps are filled and submitted for you: just reach the login page")
	}
	fmt.Println()

	for _, capture := range capturePages {
		instructions := capture.Instructions
		if capture.login && *account != "" {
			instructions = "Reach the login page, the form will be filled and submitted"
		}

		fmt.Println("----------------------------------------------------------------")
		fmt.Printf("Capturing: %s.html\n", capture.Name)
		fmt.Printf("Instructions: %s\n", instructions)
		fmt.Print("   Press ENTER when ready (or 'skip'/'quit'): ")

		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))

		if input == "quit" {
			fmt.Println("\nExiting...")
			break
		}
		if input == "skip" {
			fmt.Printf("   Skipped %s\n\n", capture.Name)
			continue
		}

		if capture.login && *account != "" {
			code := password
			if capture.Name == "landing_empty" {
				code = wrongCode(password)
			}
			if err := login(page, *account, code, typeText); err != nil {
				fmt.Printf("   Error logging in: %v\n\n", err)
				continue
			}
		}

		if err := capturePage(page, outDir, capture.Name); err != nil {
			fmt.Printf("   Error: %v\n\n", err)
			continue
		}
	}

	saveMetadata(outDir, *bankDir)

	fmt.Println("================================================================")
	fmt.Println("Capture complete!")
	fmt.Println()
	fmt.Println("IMPORTANT: Sanitize sensitive data before committing!")
	fmt.Println("   Run: go run ./scripts/sanitize-fixtures -bank=" + *bankDir)
}

func login(page *rod.Page, account, password string, typeText browser.TypeFunc) error {
	if err := browser.FillLogin(page, account, password, typeText); err != nil {
		return err
	}
	return browser.SubmitLogin(page)
}

// wrongCode returns a code of the same length that differs at every digit.
func wrongCode(code string) string {
	out := []byte(code)
	for i, c := range out {
		if c >= '0' && c <= '9' {
			out[i] = '0' + (c-'0'+1)%10
		}
	}
	return string(out)
}

func capturePage(page *rod.Page, outDir, name string) error {
	if err := browser.WaitForFrames(page); err != nil {
		return err
	}
	time.Sleep(1 * time.Second)

	// Screenshot before the frames are inlined, for visual fidelity
	screenshotPath := filepath.Join(outDir, name+".png")
	if buf, err := page.Screenshot(false, nil); err == nil {
		if writeErr := os.WriteFile(screenshotPath, buf, 0o644); writeErr != nil {
			fmt.Printf("   Error saving screenshot: %v\n", writeErr)
		} else {
			fmt.Printf("   Screenshot: %s\n", screenshotPath)
		}
	} else {
		fmt.Printf("   Screenshot failed: %v\n", err)
	}

	html, frameCount, err := browser.InlineFrames(page)
	if err != nil {
		return fmt.Errorf("capture HTML: %w", err)
	}
	if frameCount > 0 {
		fmt.Printf("   Inlined %d frame(s) into captured HTML\n", frameCount)
	}

	htmlPath := filepath.Join(outDir, name+".html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("save HTML: %w", err)
	}

	fmt.Printf("   Saved: %s\n", htmlPath)
	if info, err := page.Info(); err == nil {
		fmt.Printf("   URL: %s\n\n", info.URL)
	}

	report, err := creditagricole.Probe(html)
	if err == nil {
		fmt.Printf("   keypad digits: %d, account rows: %d\n\n", report.KeypadDigits, report.Count("account row"))
	}

	return nil
}

func saveMetadata(outDir, bankDir string) {
	metadata := fmt.Sprintf(`# Fixture Metadata
bank: %s
captured_at: %s
captured_by: %s

## Files
login_page.html    login form with a freshly shuffled keypad
landing_page.html  account summary after a successful login
landing_empty.html page shown after a rejected login

Screenshots (.png) are provided for visual reference only.

## Notes
- Browsers save pages as UTF-8, the portal serves ISO-8859-1
- These fixtures must be sanitized before committing
- Re-run capture if the probe command reports missing selectors
`, bankDir, time.Now().Format(time.RFC3339), os.Getenv("USER"))

	metaPath := filepath.Join(outDir, "README.md")
	if err := os.WriteFile(metaPath, []byte(metadata), 0o644); err != nil {
		fmt.Printf("Error saving metadata: %v\n", err)
	}
}
