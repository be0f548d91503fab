package main

import (
	"fmt"
	"io"
	"os"

	"github.com/grez-lucas/ca-balance/internal/scraper/bank/creditagricole"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (a *app) newProbeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the login page still has the expected structure",
		Long: `probe fetches the login page, or reads a saved page with --file, and
reports how many nodes each selector matches and whether the virtual keypad
can be read. No credential is sent.`,
		Args: cobra.NoArgs,
		RunE: a.traced(func(cmd *cobra.Command, _ []string) error {
			page, err := a.probePage(cmd, file)
			if err != nil {
				return err
			}

			report, err := creditagricole.Probe(page)
			if err != nil {
				return err
			}

			printProbeReport(cmd.OutOrStdout(), report)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "saved HTML page to inspect instead of fetching the login page")

	return cmd
}

func (a *app) probePage(cmd *cobra.Command, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read page: %w", err)
		}
		return string(data), nil
	}

	client, err := creditagricole.NewClient(a.cfg.ClientOptions()...)
	if err != nil {
		return "", err
	}
	return client.FetchLoginPage(cmd.Context())
}

func printProbeReport(out io.Writer, report *creditagricole.ProbeReport) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Name", "Selector", "Matches"})
	for _, s := range report.Selectors {
		t.AppendRow(table.Row{s.Name, s.Selector, s.Count})
	}
	t.Render()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "login form fields: %v\n", report.FormFields)

	if report.KeypadErr != nil {
		fmt.Fprintf(out, "keypad: %v\n", report.KeypadErr)
	} else {
		fmt.Fprintf(out, "keypad: %d digits\n", report.KeypadDigits)
	}

	if report.AccountsErr != nil {
		fmt.Fprintf(out, "accounts: %v\n", report.AccountsErr)
	} else {
		fmt.Fprintf(out, "accounts: %d\n", report.Accounts)
	}
}
