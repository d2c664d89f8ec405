package config

import (
	"errors"
	"strings"
	"time"
)

// FirebaseConfig contains the Firebase project configuration shared by the
// client-facing SDK bootstrap and the admin-side verifier.
//
// The web fields (APIKey through AppID) mirror the browser SDK config and
// feed the Identity Toolkit REST client. The admin fields (ClientEmail,
// PrivateKey) are the service-account credentials for session-cookie
// minting and are only required in firebase verifier mode.
type FirebaseConfig struct {
	APIKey            string `env:"API_KEY"`
	AuthDomain        string `env:"AUTH_DOMAIN"`
	ProjectID         string `env:"PROJECT_ID"`
	StorageBucket     string `env:"STORAGE_BUCKET"`
	MessagingSenderID string `env:"MESSAGING_SENDER_ID"`
	AppID             string `env:"APP_ID"`

	// Service-account fields for the admin verifier.
	ClientEmail string `env:"CLIENT_EMAIL"`
	PrivateKey  string `env:"PRIVATE_KEY"`

	// CredentialsFile points at a service-account JSON file and takes
	// precedence over ClientEmail/PrivateKey when set.
	CredentialsFile string `env:"CREDENTIALS_FILE"`

	// Bootstrap retry behavior.
	MaxRetries   int           `env:"INIT_MAX_RETRIES" envDefault:"3"`
	RetryBackoff time.Duration `env:"INIT_RETRY_BACKOFF" envDefault:"1s"`
}

// ErrIncompleteConfig marks a missing-configuration failure. Bootstrap
// treats it as terminal and does not retry.
var ErrIncompleteConfig = errors.New("firebase configuration is incomplete")

// Validate checks that the fields required by every verifier mode are set.
// APIKey and ProjectID are the minimum the Identity Toolkit client and the
// token verifiers need; the rest of the web config is optional plumbing.
func (f *FirebaseConfig) Validate() error {
	var missing []string
	if f.APIKey == "" {
		missing = append(missing, "FIREBASE_API_KEY")
	}
	if f.ProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if len(missing) > 0 {
		return errors.Join(ErrIncompleteConfig, errors.New("missing "+strings.Join(missing, ", ")))
	}
	return nil
}

// HasServiceAccount reports whether admin credentials are configured,
// either inline or as a credentials file.
func (f *FirebaseConfig) HasServiceAccount() bool {
	if f.CredentialsFile != "" {
		return true
	}
	return f.ClientEmail != "" && f.PrivateKey != ""
}

// NormalizedPrivateKey returns the private key with escaped newlines
// expanded. Deployment tooling commonly stores the PEM with literal "\n"
// sequences in a single-line env value.
func (f *FirebaseConfig) NormalizedPrivateKey() string {
	return strings.ReplaceAll(f.PrivateKey, `\n`, "\n")
}
