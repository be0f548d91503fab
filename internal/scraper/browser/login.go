package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank/creditagricole"
	"github.com/grez-lucas/ca-balance/internal/scraper/markup"
)

// FillLogin types the account number and clicks the password digits on the
// keypad of the login page currently shown, like a user would. It reads the
// keypad from the live DOM, so the page must not be reloaded in between.
func FillLogin(page *rod.Page, accountNumber, password string, typeText TypeFunc) error {
	html, err := page.HTML()
	if err != nil {
		return fmt.Errorf("read login page: %w", err)
	}

	doc, err := markup.Parse(html)
	if err != nil {
		return fmt.Errorf("parse login page: %w", err)
	}

	mapping, err := creditagricole.BuildKeypadMapping(doc)
	if err != nil {
		return err
	}

	codes, err := mapping.Translate(password)
	if err != nil {
		return err
	}

	field, err := page.Element(fmt.Sprintf(`%s input[name="%s"]`, creditagricole.SelectorLoginForm, creditagricole.FieldAccount))
	if err != nil {
		return fmt.Errorf("account field not found: %w", err)
	}
	if err := field.SelectAllText(); err != nil {
		return fmt.Errorf("select account field: %w", err)
	}
	if err := field.Input(""); err != nil {
		return fmt.Errorf("clear account field: %w", err)
	}
	if err := typeText(field, accountNumber); err != nil {
		return fmt.Errorf("type account number: %w", err)
	}

	for i, code := range codes {
		cell, err := page.Element(fmt.Sprintf(`%s[onclick*="'%s'"]`, creditagricole.SelectorKeypadCell, code))
		if err != nil {
			return fmt.Errorf("keypad cell for character %d not found: %w", i, err)
		}
		if err := cell.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("click keypad cell for character %d: %w", i, err)
		}
	}

	return nil
}

// SubmitLogin posts the login form and waits for the next page to load.
func SubmitLogin(page *rod.Page) error {
	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)

	if _, err := page.Eval(fmt.Sprintf(`() => document.querySelector('%s').submit()`, creditagricole.SelectorLoginForm)); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	wait()
	return nil
}
