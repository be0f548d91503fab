package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank/creditagricole"
	"github.com/grez-lucas/ca-balance/internal/scraper/har"
	"github.com/spf13/cobra"
)

type balanceOptions struct {
	username   string
	password   string
	jsonOutput bool
	recordPath string
}

func (a *app) runBalance(cmd *cobra.Command, opts *balanceOptions) error {
	p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

	account := firstNonEmpty(opts.username, a.cfg.Account)
	if account == "" {
		var err error
		if account, err = p.Line("Account number: "); err != nil {
			return err
		}
	}

	password := firstNonEmpty(opts.password, a.cfg.Password)
	if password == "" {
		var err error
		if password, err = p.Secret("Personal code: "); err != nil {
			return err
		}
	}

	clientOpts := a.cfg.ClientOptions()

	var rec *har.Recorder
	if opts.recordPath != "" {
		rec = har.NewRecorder()
		clientOpts = append(clientOpts, creditagricole.WithRecorder(rec))
	}

	client, err := creditagricole.NewClient(clientOpts...)
	if err != nil {
		return err
	}

	accounts, err := client.ConnectAndGetBalance(cmd.Context(), creditagricole.Credentials{
		AccountNumber: account,
		Password:      password,
	})

	// A failed session is the one worth keeping
	if rec != nil {
		if saveErr := rec.Save(opts.recordPath); saveErr != nil {
			slog.Warn("failed to save recording", "path", opts.recordPath, "error", saveErr)
		} else {
			slog.Info("session recorded", "path", opts.recordPath)
		}
	}

	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		slog.Warn("no account found, the credentials may have been rejected")
	}

	if opts.jsonOutput {
		return printJSON(cmd.OutOrStdout(), accounts)
	}
	printAccounts(cmd.OutOrStdout(), accounts)
	return nil
}

func printAccounts(w io.Writer, accounts []bank.Account) {
	for _, acc := range accounts {
		fmt.Fprintf(w, "%s [%s] : %s €\n", acc.Name, acc.Number, bank.FormatAmount(acc.Balance))
	}
}

type accountJSON struct {
	Name         string `json:"name"`
	Number       string `json:"number"`
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
}

func printJSON(w io.Writer, accounts []bank.Account) error {
	out := make([]accountJSON, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, accountJSON{
			Name:         acc.Name,
			Number:       acc.Number,
			Balance:      bank.FormatAmount(acc.Balance),
			BalanceCents: acc.Balance,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
