package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups cadre's secrets in the OS keychain.
const KeyringService = "cadre"

// Keychain accounts for each credential.
const (
	AccountAirtable   = "airtable"
	AccountSupabase   = "supabase"
	AccountClassifier = "classifier"
)

// Secret returns the keychain value for account, or "" when none is stored or
// no keychain is available.
func Secret(account string) string {
	v, err := keyring.Get(KeyringService, account)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// SetSecret stores value for account in the keychain.
func SetSecret(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

// DeleteSecret removes account from the keychain.
func DeleteSecret(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// resolveSecrets fills credentials left empty by the file and environment.
func (c *Config) resolveSecrets() {
	if c.Airtable.APIKey == "" {
		c.Airtable.APIKey = Secret(AccountAirtable)
	}
	if c.Supabase.Key == "" {
		c.Supabase.Key = Secret(AccountSupabase)
	}
	if c.Classifier.APIKey == "" {
		c.Classifier.APIKey = Secret(AccountClassifier)
	}
}
