package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/nftmarket/domain"
)

const testYaml = `
debug: true
server:
  address: ":8080"
chain:
  rpcUrl: "http://node:8545"
  chainId: 5
cache:
  statsTtl: 1m
marketplace:
  address: "0x939ae6A4C8dfDBB1f7085189574F0A938013952A"
  refreshInterval: 30s
`

type configTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(configTestSuite))
}

func (s *configTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *configTestSuite) write(content string) string {
	path := filepath.Join(s.dir, "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *configTestSuite) TestLoad() {
	cfg, err := Load(s.write(testYaml))
	s.Require().NoError(err)
	s.True(cfg.Debug)
	s.Equal(":8080", cfg.Server.Address)
	s.Equal(10*time.Second, cfg.Server.ShutdownTimeout)
	s.Equal(30*time.Second, cfg.Marketplace.RefreshInterval)
	s.Equal(15*time.Second, cfg.Marketplace.FetchTimeout)
	s.Equal(int64(5), cfg.Chain.ChainId)
	s.Equal(time.Minute, cfg.Cache.StatsTTL)
	s.Equal(domain.Address("0x939ae6a4c8dfdbb1f7085189574f0a938013952a"), cfg.MarketplaceAddress())
}

func (s *configTestSuite) TestEnvOverrides() {
	s.T().Setenv("MARKETPLACE_ADDRESS", "0x0000000000000000000000000000000000000001")
	s.T().Setenv("SERVER_ADDRESS", ":7070")
	cfg, err := Load(s.write(testYaml))
	s.Require().NoError(err)
	s.Equal(":7070", cfg.Server.Address)
	s.Equal(domain.Address("0x0000000000000000000000000000000000000001"), cfg.MarketplaceAddress())
}

func (s *configTestSuite) TestInvalidMarketplace() {
	_, err := Load(s.write("marketplace:\n  address: nope\n"))
	s.ErrorIs(err, domain.ErrInvalidAddress)
}

func (s *configTestSuite) TestTxLockTtl() {
	tests := []struct {
		desc    string
		lockTtl string
		wantErr bool
	}{
		{desc: "local lock", lockTtl: "0s"},
		{desc: "covers both waits", lockTtl: "13m"},
		{desc: "shorter than tx timeout", lockTtl: "1m", wantErr: true},
		{desc: "shorter than both waits", lockTtl: "12m", wantErr: true},
	}
	for _, t := range tests {
		cfg, err := Load(s.write(testYaml + "  txTimeout: 3m\n  txPendingTimeout: 10m\n  txLockTtl: " + t.lockTtl + "\n"))
		if t.wantErr {
			s.ErrorIs(err, domain.ErrBadParamInput, t.desc)
			continue
		}
		s.Require().NoError(err, t.desc)
		s.Equal(3*time.Minute, cfg.Marketplace.TxTimeout, t.desc)
	}
}

func (s *configTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(s.dir, "missing.yaml"))
	s.Error(err)
}

func (s *configTestSuite) TestParseFlags() {
	path, err := ParseFlags([]string{"--config", "/etc/app.yaml"})
	s.NoError(err)
	s.Equal("/etc/app.yaml", path)

	path, err = ParseFlags(nil)
	s.NoError(err)
	s.Equal(DefaultPath, path)
}
