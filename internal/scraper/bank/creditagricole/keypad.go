package creditagricole

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/markup"
)

// The login page renders a 5x5 grid with the digits 0-9 placed at random.
// Cells are numbered row by row:
//
//	 1  2  3  4  5
//	 6  7  8  9 10
//	11 12 13 14 15
//	16 17 18 19 20
//	21 22 23 24 25
//
// A digit cell looks like:
//
//	<td class="case" onClick="clicPosition('03'); " ...><a ...>&nbsp;&nbsp;4&nbsp;&nbsp;</a></td>
//
// and the server expects "03" whenever the user means 4.
var positionCodeRe = regexp.MustCompile(`clicPosition\('(\d{2})'\)`)

// minKeypadCells is the fewest clickable cells a login page may carry. Digits
// absent from the grid only fail when the password needs them.
const minKeypadCells = 1

// KeypadMapping maps a digit ("0" to "9") to its two character grid position
// code. It is only valid for the page it was built from.
type KeypadMapping map[string]string

// PasswordTranslationError reports a password character with no keypad cell
// on this grid. A fresh login page reshuffles the grid, so retrying the whole
// login may succeed.
type PasswordTranslationError struct {
	// Position is the zero-based index of the character in the password.
	Position int
}

func (e *PasswordTranslationError) Error() string {
	return fmt.Sprintf("%v: password character %d", bank.ErrPasswordTranslation, e.Position)
}

func (e *PasswordTranslationError) Unwrap() error {
	return bank.ErrPasswordTranslation
}

// BuildKeypadMapping reads the digit/position code pairs of the virtual
// keypad out of a login page.
func BuildKeypadMapping(doc *goquery.Document) (KeypadMapping, error) {
	cells := doc.Find(SelectorKeypadCell)
	if n := cells.Length(); n < minKeypadCells {
		return nil, keypadError(fmt.Sprintf("%d cells match %s, want at least %d", n, SelectorKeypadCell, minKeypadCells))
	}

	mapping := make(KeypadMapping, cells.Length())

	var parseErr error
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		onclick, _ := markup.Attr(cell, "onclick")
		groups := positionCodeRe.FindStringSubmatch(onclick)
		if len(groups) < 2 {
			parseErr = keypadError(fmt.Sprintf("cell %d: no position code in handler", i))
			return false
		}

		digit := markup.Text(cell)
		if !isDigit(digit) {
			parseErr = keypadError(fmt.Sprintf("cell %d: label %q is not a digit", i, digit))
			return false
		}

		if _, dup := mapping[digit]; dup {
			parseErr = keypadError(fmt.Sprintf("cell %d: digit %s appears twice", i, digit))
			return false
		}

		mapping[digit] = groups[1]
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return mapping, nil
}

// Translate returns the position code of every password character, in
// password order.
func (m KeypadMapping) Translate(password string) ([]string, error) {
	codes := make([]string, 0, len(password))
	for i, r := range []rune(password) {
		code, ok := m[string(r)]
		if !ok {
			return nil, &PasswordTranslationError{Position: i}
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Encode returns the translated password the way the login form carries it.
func (m KeypadMapping) Encode(password string) (string, error) {
	codes, err := m.Translate(password)
	if err != nil {
		return "", err
	}
	return strings.Join(codes, ","), nil
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func keypadError(details string) error {
	return &bank.ScraperError{
		BankCode:  bank.BankCreditAgricole,
		Operation: "BuildKeypadMapping",
		Cause:     bank.ErrMalformedKeypad,
		Details:   details,
	}
}
