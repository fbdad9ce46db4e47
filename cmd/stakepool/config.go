// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool"
)

// Config is the node configuration. It is read from the optional config file
// and then overridden by every flag set on the command line.
type Config struct {
	DataDir    string `yaml:"data-dir"`
	Memory     bool   `yaml:"memory"`
	Cache      int    `yaml:"cache"`
	StateCache int    `yaml:"state-cache"`

	API struct {
		Addr                 string        `yaml:"addr"`
		Cors                 string        `yaml:"cors"`
		TimeoutMs            uint64        `yaml:"timeout"`
		EnableLogs           bool          `yaml:"enable-logs"`
		SlowQueriesThreshold time.Duration `yaml:"slow-queries-threshold"`
	} `yaml:"api"`

	Pool struct {
		ZeroStakePolicy string `yaml:"zero-stake-policy"`
	} `yaml:"pool"`

	Faucet bool `yaml:"faucet"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Admin struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"admin"`

	Log struct {
		Verbosity int    `yaml:"verbosity"`
		Format    string `yaml:"format"`
	} `yaml:"log"`
}

func defaultConfig() *Config {
	cfg := &Config{
		DataDir:    dataDirFlag.Value,
		Cache:      cacheFlag.Value,
		StateCache: stateCacheFlag.Value,
	}
	cfg.API.Addr = apiAddrFlag.Value
	cfg.API.Cors = apiCorsFlag.Value
	cfg.API.TimeoutMs = apiTimeoutFlag.Value
	cfg.API.SlowQueriesThreshold = apiSlowQueriesThresholdFlag.Value
	cfg.Pool.ZeroStakePolicy = zeroStakePolicyFlag.Value
	cfg.Metrics.Addr = metricsAddrFlag.Value
	cfg.Log.Verbosity = verbosityFlag.Value
	cfg.Log.Format = logFormatFlag.Value
	return cfg
}

// loadConfigFile reads path over the defaults. Unknown keys are rejected.
func loadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file [%v]", path)
	}
	return cfg, nil
}

func makeConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = loadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(memoryFlag.Name) {
		cfg.Memory = ctx.Bool(memoryFlag.Name)
	}
	if ctx.IsSet(cacheFlag.Name) {
		cfg.Cache = ctx.Int(cacheFlag.Name)
	}
	if ctx.IsSet(stateCacheFlag.Name) {
		cfg.StateCache = ctx.Int(stateCacheFlag.Name)
	}
	if ctx.IsSet(apiAddrFlag.Name) {
		cfg.API.Addr = ctx.String(apiAddrFlag.Name)
	}
	if ctx.IsSet(apiCorsFlag.Name) {
		cfg.API.Cors = ctx.String(apiCorsFlag.Name)
	}
	if ctx.IsSet(apiTimeoutFlag.Name) {
		cfg.API.TimeoutMs = ctx.Uint64(apiTimeoutFlag.Name)
	}
	if ctx.IsSet(enableAPILogsFlag.Name) {
		cfg.API.EnableLogs = ctx.Bool(enableAPILogsFlag.Name)
	}
	if ctx.IsSet(apiSlowQueriesThresholdFlag.Name) {
		cfg.API.SlowQueriesThreshold = ctx.Duration(apiSlowQueriesThresholdFlag.Name)
	}
	if ctx.IsSet(zeroStakePolicyFlag.Name) {
		cfg.Pool.ZeroStakePolicy = ctx.String(zeroStakePolicyFlag.Name)
	}
	if ctx.IsSet(faucetFlag.Name) {
		cfg.Faucet = ctx.Bool(faucetFlag.Name)
	}
	if ctx.IsSet(enableMetricsFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(enableMetricsFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.Metrics.Addr = ctx.String(metricsAddrFlag.Name)
	}
	if ctx.IsSet(enableAdminFlag.Name) {
		cfg.Admin.Enabled = ctx.Bool(enableAdminFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = ctx.String(logFormatFlag.Name)
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if _, err := pool.ParseZeroStakePolicy(c.Pool.ZeroStakePolicy); err != nil {
		return err
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	if !c.Memory && c.DataDir == "" {
		return errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	return nil
}
