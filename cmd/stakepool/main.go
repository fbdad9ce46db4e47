// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/log"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func makeName(name, version string) string {
	return fmt.Sprintf("%s/%s/%s-%s/%s", name, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".stakepool")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "Stakepool"
	app.Usage = "Node of a proportional reward staking pool"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = []cli.Flag{
		configFlag,
		dataDirFlag,
		memoryFlag,
		cacheFlag,
		stateCacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		zeroStakePolicyFlag,
		faucetFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		verbosityFlag,
		logFormatFlag,
	}
	app.Action = defaultAction
	app.Commands = clientCommands()
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
