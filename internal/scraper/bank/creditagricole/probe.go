package creditagricole

import (
	"fmt"

	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/markup"
)

// SelectorCount is how many nodes of a page one selector matched.
type SelectorCount struct {
	Name     string
	Selector string
	Count    int
}

// ProbeReport tells whether a page still has the structure the scraper
// relies on. It is the first thing to look at when the portal changes.
type ProbeReport struct {
	Selectors []SelectorCount

	// FormFields lists the input names of the login form, if any.
	FormFields []string

	// KeypadDigits is the number of digits the keypad mapping holds, or
	// zero when KeypadErr is set.
	KeypadDigits int
	KeypadErr    error

	// Accounts is the number of parsed accounts, or zero when AccountsErr
	// is set.
	Accounts    int
	AccountsErr error
}

var probedSelectors = []struct{ name, selector string }{
	{"login form", SelectorLoginForm},
	{"keypad cell", SelectorKeypadCell},
	{"account row", SelectorAccountRow},
	{"account name", SelectorAccountName},
	{"account number", SelectorAccountNumber},
	{"account balance", SelectorAccountBalance},
}

// Probe inspects a login or landing page without sending anything.
func Probe(html string) (*ProbeReport, error) {
	doc, err := markup.Parse(html, enteteTech)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bank.ErrParsingFailed, err)
	}

	report := &ProbeReport{}
	for _, s := range probedSelectors {
		report.Selectors = append(report.Selectors, SelectorCount{
			Name:     s.name,
			Selector: s.selector,
			Count:    doc.Find(s.selector).Length(),
		})
	}

	for _, in := range markup.FormInputs(doc.Find(SelectorLoginForm).First()) {
		report.FormFields = append(report.FormFields, in.Name)
	}

	mapping, err := BuildKeypadMapping(doc)
	if err != nil {
		report.KeypadErr = err
	} else {
		report.KeypadDigits = len(mapping)
	}

	accounts, err := ExtractAccounts(doc)
	if err != nil {
		report.AccountsErr = err
	} else {
		report.Accounts = len(accounts)
	}

	return report, nil
}

// Count returns the match count of the named selector.
func (r *ProbeReport) Count(name string) int {
	for _, s := range r.Selectors {
		if s.Name == name {
			return s.Count
		}
	}
	return 0
}
