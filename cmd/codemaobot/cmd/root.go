package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codemaobot/lib/codemao"
	"codemaobot/lib/configutil"
	"codemaobot/lib/osutil"
	"codemaobot/lib/store"
	"codemaobot/lib/telemetry"
	"codemaobot/services/autoreply"
)

type Config struct {
	// SessionCookie is an authenticated session for api.codemao.cn,
	// pasted from a logged-in browser.
	SessionCookie string `json:"session_cookie"`
	// AccountID is the operated account; its own comments are exempt
	// from moderation.
	AccountID string `json:"account_id"`
	BaseUrl   string `json:"base_url"`
	// DataPath and CachePath are the two store files. They are created
	// on first use.
	DataPath  string `json:"data_path"`
	CachePath string `json:"cache_path"`
	// LedgerPath, when set, enables the replied-event ledger so
	// interrupted auto-reply runs never answer twice.
	LedgerPath string           `json:"ledger_path"`
	Telemetry  telemetry.Config `json:"telemetry"`
}

var configPath string

var (
	config Config
	tel    telemetry.Telemetry
	client *codemao.Client
	data   *store.Store
	cache  *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "codemaobot",
	Short: "codemaobot automates moderation and replies for a codemao.cn account.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = configutil.ReadConfig[Config](configPath)
		if err != nil {
			return fmt.Errorf("read config %q: %w", configPath, err)
		}
		if config.DataPath == "" {
			config.DataPath = "data.json"
		}
		if config.CachePath == "" {
			config.CachePath = "cache.json"
		}

		tel, err = telemetry.Setup(cmd.Context(), "codemaobot", config.Telemetry)
		if err != nil {
			return err
		}
		telemetry.InstrumentPerfStats(cmd.Context())

		client, err = codemao.NewClient(codemao.ClientOptions{
			BaseUrl:       config.BaseUrl,
			SessionCookie: config.SessionCookie,
		})
		if err != nil {
			return err
		}

		data, err = store.Open(config.DataPath)
		if err != nil {
			return err
		}
		cache, err = store.Open(config.CachePath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// flushes buffered spans before the process exits
		return tel.Shutdown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "path to the json5 config file")
}

func Execute() {
	err := rootCmd.ExecuteContext(osutil.SignalContext())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func userData() store.Node {
	return data.Root().Child("user_data")
}

func accountInfo() store.Node {
	return data.Root().Child("info")
}

func openLedger(ctx context.Context) *autoreply.Ledger {
	if config.LedgerPath == "" {
		return nil
	}
	ledger, err := autoreply.OpenLedger(config.LedgerPath)
	if err != nil {
		slog.WarnContext(ctx, "failed to open reply ledger, duplicates are possible",
			"path", config.LedgerPath,
			"err", err.Error(),
		)
		return nil
	}
	return ledger
}

// stdinConfirmer asks the operator on the terminal.
type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
