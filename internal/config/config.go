package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names for all required settings.
const (
	EnvDeploymentName    = "DEPLOYMENT_NAME"
	EnvAPIKey            = "API_KEY"
	EnvEndpoint          = "ENDPOINT"
	EnvApplicationUser   = "APPLICATION_USER"
	EnvClientID          = "CLIENT_ID"
	EnvClientSecret      = "CLIENT_SECRET"
	EnvTenantID          = "TENANT_ID"
	EnvStorageConnection = "STORAGE_CONNECTION_STRING"
)

// Config holds all settings required to run the mailclerk service.
type Config struct {
	// DeploymentName is the Azure OpenAI chat deployment used for completions.
	DeploymentName string

	// APIKey authenticates against the Azure OpenAI endpoint.
	APIKey string

	// Endpoint is the Azure OpenAI resource endpoint URL.
	Endpoint string

	// ApplicationUser is the mailbox identity emails are sent on behalf of.
	ApplicationUser string

	// ClientID, ClientSecret and TenantID configure the client-credential
	// flow used to acquire Microsoft Graph tokens.
	ClientID     string
	ClientSecret string
	TenantID     string

	// StorageConnectionString connects to the Azure Table Storage account
	// backing conversation history and pending drafts.
	StorageConnectionString string
}

// Load reads the configuration from the environment. If envFile is non-empty
// the file is loaded first (missing file is an error); otherwise a .env file
// in the working directory is applied when present.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort: a local .env is a development convenience, not a requirement.
		_ = godotenv.Load()
	}

	cfg := &Config{
		DeploymentName:          os.Getenv(EnvDeploymentName),
		APIKey:                  os.Getenv(EnvAPIKey),
		Endpoint:                os.Getenv(EnvEndpoint),
		ApplicationUser:         os.Getenv(EnvApplicationUser),
		ClientID:                os.Getenv(EnvClientID),
		ClientSecret:            os.Getenv(EnvClientSecret),
		TenantID:                os.Getenv(EnvTenantID),
		StorageConnectionString: os.Getenv(EnvStorageConnection),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required setting is present. It returns an error
// naming all missing variables at once so operators can fix them in one pass.
func (c *Config) Validate() error {
	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{EnvDeploymentName, c.DeploymentName},
		{EnvAPIKey, c.APIKey},
		{EnvEndpoint, c.Endpoint},
		{EnvApplicationUser, c.ApplicationUser},
		{EnvClientID, c.ClientID},
		{EnvClientSecret, c.ClientSecret},
		{EnvTenantID, c.TenantID},
		{EnvStorageConnection, c.StorageConnectionString},
	} {
		if strings.TrimSpace(v.value) == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
