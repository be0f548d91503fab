// Package creditagricole logs in to the Crédit Agricole web portal through its
// randomized virtual keypad and scrapes the account summary page.
package creditagricole

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/markup"
)

// BalanceParseError names the landing page row whose balance could not be
// read. Extraction stops at the first such row, so a caller never gets a list
// with a silently wrong balance in it.
type BalanceParseError struct {
	Row    int
	Number string
	Text   string
	Err    error
}

func (e *BalanceParseError) Error() string {
	return fmt.Sprintf("%v: row %d (account %q): %q: %v", bank.ErrBalanceParse, e.Row, e.Number, e.Text, e.Err)
}

func (e *BalanceParseError) Unwrap() []error {
	return []error{bank.ErrBalanceParse, e.Err}
}

// --- PUBLIC API ---

// ParseAccounts parses the landing page shown after a successful login.
func ParseAccounts(html string) ([]bank.Account, error) {
	doc, err := markup.Parse(html, enteteTech)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bank.ErrParsingFailed, err)
	}
	return ExtractAccounts(doc)
}

// ExtractAccounts returns one account per summary row, in page order. A page
// without any row yields an empty slice: it may mean "no accounts" as well as
// "the login was silently rejected", and only the caller can tell.
func ExtractAccounts(doc *goquery.Document) ([]bank.Account, error) {
	rows := doc.Find(SelectorAccountRow)

	accounts := make([]bank.Account, 0, rows.Length())

	var parseErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		acc, err := parseAccountRow(i, row)
		if err != nil {
			parseErr = err
			return false
		}
		accounts = append(accounts, *acc)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return accounts, nil
}

// --- PRIVATE DOMAIN LOGIC ---

func parseAccountRow(i int, row *goquery.Selection) (*bank.Account, error) {
	nameSel := row.Find(SelectorAccountName).First()
	numberSel := row.Find(SelectorAccountNumber).First()
	balanceSel := row.Find(SelectorAccountBalance).First()

	number := markup.Text(numberSel)

	switch {
	case nameSel.Length() == 0:
		return nil, &BalanceParseError{Row: i, Number: number, Err: fmt.Errorf("missing cell %s", SelectorAccountName)}
	case numberSel.Length() == 0:
		return nil, &BalanceParseError{Row: i, Err: fmt.Errorf("missing cell %s", SelectorAccountNumber)}
	case balanceSel.Length() == 0:
		return nil, &BalanceParseError{Row: i, Number: number, Err: fmt.Errorf("missing cell %s", SelectorAccountBalance)}
	}

	text := markup.Text(balanceSel)
	balance, err := ParseFrenchAmount(text)
	if err != nil {
		return nil, &BalanceParseError{Row: i, Number: number, Text: text, Err: err}
	}

	return &bank.Account{
		Name:    markup.Text(nameSel),
		Number:  number,
		Balance: balance,
	}, nil
}

// --- LOW LEVEL UTILITIES ---

var (
	amountCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "")
	amountRe      = regexp.MustCompile(`^([+-]?)(\d+)(?:\.(\d{1,2}))?$`)
)

// ParseFrenchAmount transforms a French formatted amount ("1 234,56",
// "-10,00 €") to an int64 representation with two decimals. Anything but
// plain digits with at most two decimals is a *strconv.NumError.
func ParseFrenchAmount(s string) (int64, error) {
	cleanStr := amountCleaner.Replace(strings.TrimSpace(s))

	// "1.234,56": dots are thousands separators once a decimal comma shows up
	if strings.Contains(cleanStr, ",") {
		cleanStr = strings.ReplaceAll(cleanStr, ".", "")
		cleanStr = strings.Replace(cleanStr, ",", ".", 1)
	}

	groups := amountRe.FindStringSubmatch(cleanStr)
	if groups == nil {
		return 0, &strconv.NumError{Func: "ParseFrenchAmount", Num: s, Err: strconv.ErrSyntax}
	}

	sign, units, decimals := groups[1], groups[2], groups[3]
	for len(decimals) < 2 {
		decimals += "0"
	}

	cents, err := strconv.ParseInt(sign+units+decimals, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount out of range: %q: %w", s, err)
	}

	return cents, nil
}
