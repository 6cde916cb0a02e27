package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/account"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func TestSeedLedger(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(seed, []byte("2023-10-01,-50,Food\nbroken\n2023-10-02,200,Income,pay\n"), 0o600))

	svc := services.NewTransactionService(account.New(), core.NewBudget(), nil)
	cfg := config.Defaults()
	cfg.SeedFile = seed
	cfg.Budgets = map[string]float64{"Food": 400, "Fun": 50}

	result, err := SeedLedger(context.Background(), svc, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Line 2:")

	assert.Equal(t, 150.0, svc.Balance())
	assert.Equal(t, []string{"Food", "Fun"}, svc.BudgetCategories())
}

func TestSeedLedgerWithoutSeedFile(t *testing.T) {
	svc := services.NewTransactionService(account.New(), core.NewBudget(), nil)
	cfg := config.Defaults()

	result, err := SeedLedger(context.Background(), svc, &cfg)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Zero(t, svc.Count())
}

func TestSeedLedgerErrors(t *testing.T) {
	cfg := config.Defaults()
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.csv")
	svc := services.NewTransactionService(account.New(), core.NewBudget(), nil)
	_, err := SeedLedger(context.Background(), svc, &cfg)
	assert.ErrorContains(t, err, "read seed file")

	cfg = config.Defaults()
	cfg.Budgets = map[string]float64{"Food": 10}
	_, err = SeedLedger(context.Background(), services.NewTransactionService(account.New(), nil, nil), &cfg)
	assert.ErrorIs(t, err, services.ErrNoBudget)
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FINTRACK_CLI_TEST=loaded\n"), 0o600))
	t.Setenv("FINTRACK_CLI_TEST", "")
	require.NoError(t, os.Unsetenv("FINTRACK_CLI_TEST"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("FINTRACK_CLI_TEST"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	for _, k := range []string{config.ConfigFileEnv, "AMQP_URL", "GOOGLE_SPREADSHEET_ID", "LOG_LEVEL", "SEED_FILE", "CACHE_SIZE", "CACHE_TTL"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "abc")
	_, err := LoadAndValidateConfig(nil)
	assert.ErrorContains(t, err, "invalid port")

	t.Setenv("PORT", "9090")
	cfg, err := LoadAndValidateConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)

	_, err = LoadAndValidateConfig((*config.Config).ValidateWorker)
	assert.ErrorContains(t, err, "AMQP_URL")
}

func TestSetupLogger(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "debug"
	logger := SetupLogger(&cfg, "test")
	assert.Equal(t, "test", logger.Component())
	assert.True(t, logger.Enabled(context.Background(), -4))
}
