package creditagricole

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccounts(t *testing.T) {
	html := testutil.LoadFixture(t, "creditagricole", "landing_page")

	accounts, err := ParseAccounts(html)
	require.NoError(t, err)

	want := []bank.Account{
		{Name: "Compte Courant", Number: "00112233", Balance: 123456},
		{Name: "Livret A", Number: "00445566", Balance: 1000},
	}
	if diff := cmp.Diff(want, accounts); diff != "" {
		t.Errorf("ParseAccounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAccounts_NoRows(t *testing.T) {
	html := testutil.LoadFixture(t, "creditagricole", "landing_empty")

	accounts, err := ParseAccounts(html)
	require.NoError(t, err)

	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}

func TestParseAccounts_InvalidBalance(t *testing.T) {
	html := testutil.LoadFixture(t, "creditagricole", "landing_invalid")

	accounts, err := ParseAccounts(html)

	require.Error(t, err)
	assert.Nil(t, accounts)
	assert.ErrorIs(t, err, bank.ErrBalanceParse)

	var balanceErr *BalanceParseError
	require.ErrorAs(t, err, &balanceErr)
	assert.Equal(t, 1, balanceErr.Row)
	assert.Equal(t, "00998877", balanceErr.Number)
	assert.Equal(t, "N/D", balanceErr.Text)

	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)
}

func TestParseAccounts_HeaderZoneIgnored(t *testing.T) {
	html := `<html><body>
<!-----  DEBUT zone enteteTech  ---->
<table><tr class="colcellignepaire"><td><a class="libelle5">Menu</a><a class="libelle3">-</a><a class="montant3">x</a></td></tr></table>
<!-----  FIN zone enteteTech  ---->
<table><tr class="colcelligneimpaire"><td><a class="libelle5">PEL</a></td><td><a class="libelle3">0042</a></td><td><a class="montant3">-12,50</a></td></tr></table>
</body></html>`

	accounts, err := ParseAccounts(html)
	require.NoError(t, err)

	assert.Equal(t, []bank.Account{{Name: "PEL", Number: "0042", Balance: -1250}}, accounts)
}

func TestParseAccounts_MissingCell(t *testing.T) {
	html := `<table><tr class="colcellignepaire"><td><a class="libelle5">Compte</a></td><td><a class="libelle3">0042</a></td></tr></table>`

	_, err := ParseAccounts(html)

	var balanceErr *BalanceParseError
	require.ErrorAs(t, err, &balanceErr)
	assert.Equal(t, 0, balanceErr.Row)
	assert.Equal(t, "0042", balanceErr.Number)
	assert.Contains(t, err.Error(), SelectorAccountBalance)
}

func TestParseFrenchAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "thousands with space", input: "1 234,56", want: 123456},
		{name: "thousands with nbsp", input: "1\u00a0234,56", want: 123456},
		{name: "thousands with narrow nbsp", input: "12\u202f345,00", want: 1234500},
		{name: "thousands with dots", input: "1.234.567,89", want: 123456789},
		{name: "negative", input: "-10,00", want: -1000},
		{name: "currency sign", input: "2 500,10 €", want: 250010},
		{name: "single decimal", input: "3,5", want: 350},
		{name: "no decimals", input: "42", want: 4200},
		{name: "zero", input: "0,00", want: 0},
		{name: "float rounding", input: "0,29", want: 29},
		{name: "surrounding whitespace", input: "  7,07\n", want: 707},
		{name: "explicit plus", input: "+5,01", want: 501},
		{name: "largest amount", input: "92233720368547758,07", want: math.MaxInt64},
		{name: "negative single decimal", input: "-0,5", want: -50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFrenchAmount(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFrenchAmount_Invalid(t *testing.T) {
	inputs := []string{
		"", "N/D", "12,34,56", "abc,00", "1e999",
		"1e300", "1e5", "1E5", "0x1p4", "Inf", "NaN",
		"99999999999999999999,00", "1,234",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := ParseFrenchAmount(input)
			assert.Error(t, err)
			assert.Zero(t, got)

			var numErr *strconv.NumError
			assert.ErrorAs(t, err, &numErr)
		})
	}
}
