package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/grez-lucas/ca-balance/internal/config"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank/testutil"
	"github.com/grez-lucas/ca-balance/internal/scraper/har"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccounts = []bank.Account{
	{Name: "Compte Courant", Number: "00112233", Balance: 123456},
	{Name: "Livret A", Number: "00445566", Balance: -1000},
}

func TestPrintAccounts(t *testing.T) {
	var buf bytes.Buffer
	printAccounts(&buf, testAccounts)

	assert.Equal(t, "Compte Courant [00112233] : 1234.56 €\nLivret A [00445566] : -10.00 €\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, testAccounts))

	var got []accountJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, []accountJSON{
		{Name: "Compte Courant", Number: "00112233", Balance: "1234.56", BalanceCents: 123456},
		{Name: "Livret A", Number: "00445566", Balance: "-10.00", BalanceCents: -1000},
	}, got)
}

func TestPrintJSON_NoAccounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, nil))

	assert.Equal(t, "[]\n", buf.String())
}

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "console info", cfg: config.LoggingConfig{Level: "info", Format: "console"}},
		{name: "json debug", cfg: config.LoggingConfig{Level: "debug", Format: "json"}},
		{name: "bad level", cfg: config.LoggingConfig{Level: "trace", Format: "console"}, wantErr: true},
		{name: "bad format", cfg: config.LoggingConfig{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := setupLogging(&buf, tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			slog.Warn("hello")
			assert.Contains(t, buf.String(), "hello")
		})
	}
}

func TestPrompter_Line(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  12345678901 \n"), &out)

	got, err := p.Line("Account number: ")
	require.NoError(t, err)

	assert.Equal(t, "12345678901", got)
	assert.Equal(t, "Account number: ", out.String())
}

func TestPrompter_SecretWithoutTerminal(t *testing.T) {
	p := newPrompter(strings.NewReader("123456"), &bytes.Buffer{})

	got, err := p.Secret("Personal code: ")
	require.NoError(t, err)
	assert.Equal(t, "123456", got)
}

func TestPrompter_EmptyInput(t *testing.T) {
	p := newPrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Line("Account number: ")
	assert.ErrorContains(t, err, "read account number")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

// isolate keeps the user's config and environment out of the command.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("CA_BALANCE_ACCOUNT", "")
	t.Setenv("CA_BALANCE_PASSWORD", "")
}

// fakePortal answers the first post with the login page and every other one
// with the landing page.
func fakePortal(t *testing.T) *httptest.Server {
	t.Helper()

	loginPage := testutil.LoadFixture(t, "creditagricole", "login_page")
	landingPage := testutil.LoadFixture(t, "creditagricole", "landing_page")

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(loginPage))
			return
		}
		_, _ = w.Write([]byte(landingPage))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_PrintsBalances(t *testing.T) {
	isolate(t)
	srv := fakePortal(t)

	out, err := execute(t, "123456\n", "--endpoint", srv.URL+"/stb/entreeBam", "-u", "12345678901")
	require.NoError(t, err)

	assert.Equal(t, "Compte Courant [00112233] : 1234.56 €\nLivret A [00445566] : 10.00 €\n", out)
}

func TestRootCmd_PromptsForEverything(t *testing.T) {
	isolate(t)
	srv := fakePortal(t)
	t.Setenv("CA_BALANCE_BANK_ENDPOINT", srv.URL+"/stb/entreeBam")

	out, err := execute(t, "12345678901\n123456\n", "--json")
	require.NoError(t, err)

	var got []accountJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "1234.56", got[0].Balance)
}

func TestRootCmd_Record(t *testing.T) {
	isolate(t)
	srv := fakePortal(t)
	path := filepath.Join(t.TempDir(), "session.har.json")

	_, err := execute(t, "", "--endpoint", srv.URL+"/stb/entreeBam", "-u", "12345678901", "-p", "123456", "--record", path)
	require.NoError(t, err)

	log, err := har.LoadHAR(path)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	assert.NotContains(t, log.Entries[1].Request.Body, "123456")
}

func TestRootCmd_TransportError(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "", "--endpoint", srv.URL, "-u", "1", "-p", "1")
	assert.ErrorIs(t, err, bank.ErrTransport)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "--log-level", "loud", "-u", "1", "-p", "1")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestProbeCmd_File(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "probe", "--file", testutil.FixturePath("creditagricole", "login_page"))
	require.NoError(t, err)

	assert.Contains(t, out, "keypad: 10 digits")
	assert.Contains(t, out, "accounts: 0")
	assert.Regexp(t, `keypad cell\s+│\s+td\.case\[onclick\]\s+│\s+10`, out)
}

func TestProbeCmd_Fetch(t *testing.T) {
	isolate(t)
	srv := fakePortal(t)

	out, err := execute(t, "", "probe", "--endpoint", srv.URL+"/stb/entreeBam")
	require.NoError(t, err)

	assert.Contains(t, out, "keypad: 10 digits")
}

func TestProbeCmd_MissingFile(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "probe", "--file", filepath.Join(t.TempDir(), "nope.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
