// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/pool"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file, flags override its values",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the pool database",
	}
	memoryFlag = cli.BoolFlag{
		Name:  "memory",
		Usage: "keep all data in memory, nothing survives a restart",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 256,
		Usage: "megabytes of ram allocated to the database cache",
	}
	stateCacheFlag = cli.IntFlag{
		Name:  "state-cache",
		Value: 4096,
		Usage: "number of committed storage values kept in memory",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.DurationFlag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "log API requests slower than this duration even when API logs are disabled (0 disables)",
	}
	zeroStakePolicyFlag = cli.StringFlag{
		Name:  "zero-stake-policy",
		Value: string(pool.PolicyEscrow),
		Usage: "what a reward deposit does while nothing is staked (escrow|reject)",
	}
	faucetFlag = cli.BoolFlag{
		Name:  "faucet",
		Usage: "allow minting any asset through the API, for test & dev",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "serves the log level endpoint under /admin",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log-format",
		Value: "terminal",
		Usage: "log output format (terminal, json, logfmt)",
	}

	// client flags
	nodeFlag = cli.StringFlag{
		Name:  "node",
		Value: "http://localhost:8669",
		Usage: "URL of a running node",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Value: 10 * time.Second,
		Usage: "request timeout",
	}
)
