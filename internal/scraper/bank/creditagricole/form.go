package creditagricole

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/markup"
)

// BuildLoginFields returns every field the login form must post: the
// server-issued inputs as they are, plus the account number and the password
// translated through the keypad of the same page.
func BuildLoginFields(doc *goquery.Document, accountNumber, password string) (map[string]string, error) {
	form := doc.Find(SelectorLoginForm).First()
	if form.Length() == 0 {
		return nil, &bank.ScraperError{
			BankCode:  bank.BankCreditAgricole,
			Operation: "BuildLoginFields",
			Cause:     bank.ErrMalformedLoginPage,
			Details:   "form not found with selector: " + SelectorLoginForm,
		}
	}

	fields := markup.Fields(markup.FormInputs(form))

	mapping, err := BuildKeypadMapping(doc)
	if err != nil {
		return nil, err
	}

	translated, err := mapping.Encode(password)
	if err != nil {
		return nil, err
	}

	fields[FieldConfirmation] = ConfirmationPlaceholder
	fields[FieldAccount] = accountNumber
	fields[FieldPassword] = translated

	return fields, nil
}
