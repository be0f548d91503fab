package creditagricole

import "github.com/grez-lucas/ca-balance/internal/scraper/markup"

// CSS Selectors for the Crédit Agricole "comète" web portal
const (
	// Login page
	SelectorLoginForm  = `form[name="formulaire"]`
	SelectorKeypadCell = `td.case[onclick]`

	// Landing page
	SelectorAccountRow     = `tr.colcellignepaire, tr.colcelligneimpaire`
	SelectorAccountName    = `a.libelle5`
	SelectorAccountNumber  = `a.libelle3`
	SelectorAccountBalance = `a.montant3`
)

// Login form fields overwritten before submission
const (
	FieldConfirmation = "CCCRYC2"
	FieldAccount      = "CCPTE"
	FieldPassword     = "CCCRYC"

	// The server expects six zeros whatever the password length.
	ConfirmationPlaceholder = "000000"
)

// enteteTech wraps an inline script block on the landing page that breaks
// HTML parsers.
var enteteTech = markup.Excision{
	Begin: "<!-----  DEBUT zone enteteTech  ---->",
	End:   "<!-----  FIN zone enteteTech  ---->",
}
