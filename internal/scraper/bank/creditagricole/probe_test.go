package creditagricole

import (
	"testing"

	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_LoginPage(t *testing.T) {
	report, err := Probe(testutil.LoadFixture(t, "creditagricole", "login_page"))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count("login form"))
	assert.Equal(t, 10, report.Count("keypad cell"))
	assert.Equal(t, 0, report.Count("account row"))
	assert.Equal(t, 10, report.KeypadDigits)
	assert.NoError(t, report.KeypadErr)
	assert.Equal(t, []string{"session_token", "idtcm", "act", "CCCRYC", "CCCRYC2", "CCPTE"}, report.FormFields)
	assert.Zero(t, report.Accounts)
	assert.NoError(t, report.AccountsErr)
}

func TestProbe_LandingPage(t *testing.T) {
	report, err := Probe(testutil.LoadFixture(t, "creditagricole", "landing_page"))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Count("login form"))
	assert.Empty(t, report.FormFields)
	assert.ErrorIs(t, report.KeypadErr, bank.ErrMalformedKeypad)
	assert.Zero(t, report.KeypadDigits)

	// The header zone row is excised before counting
	assert.Equal(t, 2, report.Count("account row"))
	assert.Equal(t, 2, report.Count("account balance"))
	assert.Equal(t, 2, report.Accounts)
}

func TestProbe_InvalidLanding(t *testing.T) {
	report, err := Probe(testutil.LoadFixture(t, "creditagricole", "landing_invalid"))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Count("account row"))
	assert.ErrorIs(t, report.AccountsErr, bank.ErrBalanceParse)
	assert.Zero(t, report.Accounts)
}

func TestProbeReport_CountUnknownName(t *testing.T) {
	report := &ProbeReport{Selectors: []SelectorCount{{Name: "login form", Count: 1}}}

	assert.Equal(t, 0, report.Count("nope"))
}
