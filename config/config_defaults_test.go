package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_MemoryDriver(t *testing.T) {
	cfg := &Config{}
	cfg.Persistence.Driver = PersistenceDriverMemory
	cfg.Storage = &StorageConfig{BucketURL: "mem://"}

	require.NoError(t, cfg.applyDefaults())

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 20, cfg.Sponsor.MaxDepth)
	assert.Equal(t, defaultCycleCheckLimit, cfg.Sponsor.CycleCheckLimit)
	assert.Equal(t, defaultGenealogyWorkers, cfg.Genealogy.Workers)
	assert.Equal(t, int64(DefaultMaxUploadSize), cfg.Storage.MaxUploadSize)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestApplyDefaults_PostgresRequiresConnection(t *testing.T) {
	cfg := &Config{}

	err := cfg.applyDefaults()

	require.Error(t, err)
	assert.Equal(t, PersistenceDriverPostgres, cfg.Persistence.Driver)
}

func TestApplyDefaults_UnknownDriver(t *testing.T) {
	cfg := &Config{}
	cfg.Persistence.Driver = "cassandra"

	assert.Error(t, cfg.applyDefaults())
}

func TestCommissionRates(t *testing.T) {
	rates, err := CommissionConfig{Levels: []string{"0.10", " 0.05 ", "0"}}.Rates()
	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.True(t, decimal.RequireFromString("0.1").Equal(rates[0]))
	assert.True(t, decimal.RequireFromString("0.05").Equal(rates[1]))

	_, err = CommissionConfig{Levels: []string{"1.5"}}.Rates()
	assert.Error(t, err)

	_, err = CommissionConfig{Levels: []string{"-0.1"}}.Rates()
	assert.Error(t, err)

	_, err = CommissionConfig{Levels: []string{"ten percent"}}.Rates()
	assert.Error(t, err)
}
