package main

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/config"
)

var secretAccounts = []string{config.AccountAirtable, config.AccountSupabase, config.AccountClassifier}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage credentials in the OS keychain",
}

var secretSetCmd = &cobra.Command{
	Use:       "set <account>",
	Short:     "Store a credential (reads the value from stdin)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: secretAccounts,
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := checkAccount(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Enter %s credential: ", account)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading credential: %w", err)
		}
		if err := config.SetSecret(account, strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Printf("Stored %s credential in the keychain.\n", account)
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:       "delete <account>",
	Short:     "Remove a stored credential",
	Args:      cobra.ExactArgs(1),
	ValidArgs: secretAccounts,
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := checkAccount(args[0])
		if err != nil {
			return err
		}
		if err := config.DeleteSecret(account); err != nil {
			return err
		}
		fmt.Printf("Removed %s credential.\n", account)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd)
}

func checkAccount(account string) (string, error) {
	account = strings.ToLower(strings.TrimSpace(account))
	if !slices.Contains(secretAccounts, account) {
		return "", fmt.Errorf("unknown account %q (want one of %s)", account, strings.Join(secretAccounts, ", "))
	}
	return account, nil
}
