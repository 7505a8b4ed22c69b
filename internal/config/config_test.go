package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DeploymentName:          "gpt-4o",
		APIKey:                  "key",
		Endpoint:                "https://example.openai.azure.com",
		ApplicationUser:         "assistant@example.com",
		ClientID:                "client",
		ClientSecret:            "secret",
		TenantID:                "tenant",
		StorageConnectionString: "UseDevelopmentStorage=true",
	}
}

func TestValidate(t *testing.T) {
	t.Run("complete config passes", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("single missing value is named", func(t *testing.T) {
		cfg := validConfig()
		cfg.TenantID = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvTenantID)
	})

	t.Run("whitespace-only value counts as missing", func(t *testing.T) {
		cfg := validConfig()
		cfg.APIKey = "   "
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvAPIKey)
	})

	t.Run("all missing values are reported at once", func(t *testing.T) {
		err := (&Config{}).Validate()
		require.Error(t, err)
		for _, name := range []string{
			EnvDeploymentName, EnvAPIKey, EnvEndpoint, EnvApplicationUser,
			EnvClientID, EnvClientSecret, EnvTenantID, EnvStorageConnection,
		} {
			assert.Contains(t, err.Error(), name)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads values from environment", func(t *testing.T) {
		t.Setenv(EnvDeploymentName, "gpt-4o")
		t.Setenv(EnvAPIKey, "key")
		t.Setenv(EnvEndpoint, "https://example.openai.azure.com")
		t.Setenv(EnvApplicationUser, "assistant@example.com")
		t.Setenv(EnvClientID, "client")
		t.Setenv(EnvClientSecret, "secret")
		t.Setenv(EnvTenantID, "tenant")
		t.Setenv(EnvStorageConnection, "UseDevelopmentStorage=true")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", cfg.DeploymentName)
		assert.Equal(t, "assistant@example.com", cfg.ApplicationUser)
	})

	t.Run("fails fast on incomplete environment", func(t *testing.T) {
		for _, name := range []string{
			EnvDeploymentName, EnvAPIKey, EnvEndpoint, EnvApplicationUser,
			EnvClientID, EnvClientSecret, EnvTenantID, EnvStorageConnection,
		} {
			t.Setenv(name, "")
		}
		_, err := Load("")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "missing required configuration"))
	})

	t.Run("explicit env file must exist", func(t *testing.T) {
		_, err := Load("testdata/does-not-exist.env")
		require.Error(t, err)
	})
}
