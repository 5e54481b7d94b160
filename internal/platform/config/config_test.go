package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simtax/internal/simplifiedtax"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestServerFromLookup(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := fromLookup(env(nil))
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 100, cfg.BatchLimit)
		assert.Equal(t, 8, cfg.BatchConcurrency)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.False(t, cfg.DebugTraceDefault)
		assert.Empty(t, cfg.Redis.URL)
		assert.Equal(t, 10, cfg.Redis.PoolSize)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := fromLookup(env(map[string]string{
			"SIMTAX_ADDR":                ":9090",
			"SIMTAX_PARAMETERS_FILE":     " /etc/simtax/parameters.yaml ",
			"SIMTAX_DEBUG_TRACE_DEFAULT": "true",
			"SIMTAX_BATCH_LIMIT":         "25",
			"SIMTAX_BATCH_CONCURRENCY":   "2",
			"SIMTAX_LOG_LEVEL":           "DEBUG",
			"SIMTAX_SHUTDOWN_TIMEOUT":    "3s",
			"SIMTAX_REDIS_URL":           "redis://cache:6379/2",
			"SIMTAX_REDIS_READ_TIMEOUT":  "250ms",
		}))
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, "/etc/simtax/parameters.yaml", cfg.ParametersFile)
		assert.True(t, cfg.DebugTraceDefault)
		assert.Equal(t, 25, cfg.BatchLimit)
		assert.Equal(t, 2, cfg.BatchConcurrency)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
		assert.Equal(t, 250*time.Millisecond, cfg.Redis.ReadTimeout)
	})

	invalid := map[string]map[string]string{
		"non numeric batch limit": {"SIMTAX_BATCH_LIMIT": "many"},
		"zero concurrency":        {"SIMTAX_BATCH_CONCURRENCY": "0"},
		"bad boolean":             {"SIMTAX_DEBUG_TRACE_DEFAULT": "sometimes"},
		"bad duration":            {"SIMTAX_SHUTDOWN_TIMEOUT": "soon"},
		"negative redis timeout":  {"SIMTAX_REDIS_DIAL_TIMEOUT": "-1s"},
	}
	for name, vars := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := fromLookup(env(vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadParametersDefaults(t *testing.T) {
	set, err := LoadParameters("", env(nil))
	require.NoError(t, err)

	def := simplifiedtax.DefaultParameters()
	assert.True(t, set.Parameters.TurnoverThreshold.Equal(def.TurnoverThreshold))
	assert.Equal(t, simplifiedtax.AutoRouteUniversal, set.Parameters.AutoRouteDisqualifiers)
	assert.Empty(t, set.FixedAmounts)
	assert.Empty(t, set.LandRatesPerHectare)
}

func TestLoadParametersFromYAML(t *testing.T) {
	path := writeFile(t, `
TURNOVER_THRESHOLD: 250000
GENERAL_TAX_RATE: "0.025"
EMPLOYEE_THRESHOLD: 12
ZONE_COEFFICIENTS:
  baku_center: 3
TRADE_SPLIT_MODE: fixed_share
TRADE_POS_SHARE: 0.4
FLOOR_ADJUSTED_TURNOVER: true
FIXED_AMOUNTS:
  auto_transport: 120
  auto_fixed_220_10: 55.50
LAND_RATES_PER_HECTARE:
  rural: 6
`)

	set, err := LoadParameters(path, env(nil))
	require.NoError(t, err)

	p := set.Parameters
	assert.Equal(t, "250000", p.TurnoverThreshold.String())
	assert.Equal(t, "0.025", p.GeneralTaxRate.String())
	assert.Equal(t, 12, p.EmployeeThreshold)
	assert.Equal(t, "3", p.ZoneCoefficients[simplifiedtax.ZoneBakuCenter].String())
	assert.Equal(t, "2", p.ZoneCoefficients[simplifiedtax.ZoneBakuOther].String(), "untouched zones keep defaults")
	assert.Equal(t, simplifiedtax.SplitFixedShare, p.TradeSplitMode)
	assert.Equal(t, "0.4", p.TradePOSShare.String())
	assert.True(t, p.FloorAdjustedTurnover)

	assert.Equal(t, "120", set.FixedAmounts[simplifiedtax.RouteAutoTransport].String())
	assert.Equal(t, "55.5", set.FixedAmounts[simplifiedtax.RouteAutoFixed22010].String())
	assert.Equal(t, "6", set.LandRatesPerHectare[simplifiedtax.ZoneRural].String())
}

func TestLoadParametersEnvWinsOverYAML(t *testing.T) {
	path := writeFile(t, "TURNOVER_THRESHOLD: 250000\n")

	set, err := LoadParameters(path, env(map[string]string{
		"TURNOVER_THRESHOLD":          "300000",
		"POS_COEFFICIENT":             "0.4",
		"ZONE_COEFFICIENT_RURAL":      "1.1",
		"FIXED_AMOUNT_AUTO_TRANSPORT": "80",
		"LAND_RATE_PER_HECTARE_RURAL": "7",
		"AUTO_ROUTE_DISQUALIFIERS":    "ALL",
	}))
	require.NoError(t, err)

	assert.Equal(t, "300000", set.Parameters.TurnoverThreshold.String())
	assert.Equal(t, "0.4", set.Parameters.POSCoefficient.String())
	assert.Equal(t, "1.1", set.Parameters.ZoneCoefficients[simplifiedtax.ZoneRural].String())
	assert.Equal(t, "80", set.FixedAmounts[simplifiedtax.RouteAutoTransport].String())
	assert.Equal(t, "7", set.LandRatesPerHectare[simplifiedtax.ZoneRural].String())
	assert.Equal(t, simplifiedtax.AutoRouteAll, set.Parameters.AutoRouteDisqualifiers)
}

func TestLoadParametersRejectsInvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
		want string
	}{
		{name: "unknown key", yaml: "TURNOVER_LIMIT: 1\n", want: "TURNOVER_LIMIT"},
		{name: "unknown zone", yaml: "ZONE_COEFFICIENTS:\n  mars: 1\n", want: "unknown zone"},
		{name: "non fixed route", yaml: "FIXED_AMOUNTS:\n  general: 10\n", want: "no fixed amount"},
		{name: "not a number", yaml: "LAND_MULTIPLIER: two\n", want: "invalid number"},
		{name: "rate out of range", env: map[string]string{"GENERAL_TAX_RATE": "1.5"}, want: "GENERAL_TAX_RATE"},
		{name: "unknown policy", env: map[string]string{"AUTO_ROUTE_DISQUALIFIERS": "some"}, want: "AUTO_ROUTE_DISQUALIFIERS"},
		{name: "bad env number", env: map[string]string{"PROPERTY_TAX_PER_M2": "fifteen"}, want: "PROPERTY_TAX_PER_M2"},
		{name: "negative fixed amount", env: map[string]string{"FIXED_AMOUNT_AUTO_BETTING_LOTTERY": "-1"}, want: "FIXED_AMOUNTS.auto_betting_lottery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, tt.yaml)
			}
			_, err := LoadParameters(path, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadParametersMissingFile(t *testing.T) {
	_, err := LoadParameters(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadParametersEmptyFile(t *testing.T) {
	set, err := LoadParameters(writeFile(t, ""), env(nil))
	require.NoError(t, err)
	assert.Equal(t, "200000", set.Parameters.TurnoverThreshold.String())
}

func TestFromEnvLoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIMTAX_BATCH_LIMIT=7\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("SIMTAX_BATCH_LIMIT") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.BatchLimit)
}

func TestFromEnvWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIMTAX_ADDR", ":7070")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}
