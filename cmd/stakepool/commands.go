// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/client"
	"github.com/vechain/stakepool/common"
)

// output is where commands print their results.
var output io.Writer = os.Stdout

func clientCommands() []cli.Command {
	flags := []cli.Flag{nodeFlag, timeoutFlag}
	return []cli.Command{
		{
			Name:   "status",
			Usage:  "show the pool, its stakers and its reward dust",
			Flags:  flags,
			Action: statusAction,
		},
		{
			Name:      "initialize",
			Usage:     "set the stake and reward assets of the pool",
			ArgsUsage: "<stake-asset> <reward-asset>",
			Flags:     flags,
			Action: withClient(2, func(c *client.Client, args []string) (any, error) {
				addrs, err := parseAddresses(args)
				if err != nil {
					return nil, err
				}
				return success(c.Initialize(addrs[0], addrs[1]))
			}),
		},
		{
			Name:      "stake",
			Usage:     "stake an amount the staker approved to the pool",
			ArgsUsage: "<staker> <amount>",
			Flags:     flags,
			Action: withClient(2, func(c *client.Client, args []string) (any, error) {
				staker, amount, err := parseAccountAmount(args[0], args[1])
				if err != nil {
					return nil, err
				}
				return success(c.Stake(staker, amount))
			}),
		},
		{
			Name:      "unstake",
			Usage:     "withdraw the whole stake and the rewards of a staker",
			ArgsUsage: "<staker>",
			Flags:     flags,
			Action: withClient(1, func(c *client.Client, args []string) (any, error) {
				addrs, err := parseAddresses(args)
				if err != nil {
					return nil, err
				}
				return c.UnstakeAndClaim(addrs[0])
			}),
		},
		{
			Name:      "deposit",
			Usage:     "deposit a reward shared by the current stakers",
			ArgsUsage: "<depositor> <amount>",
			Flags:     flags,
			Action: withClient(2, func(c *client.Client, args []string) (any, error) {
				depositor, amount, err := parseAccountAmount(args[0], args[1])
				if err != nil {
					return nil, err
				}
				return success(c.DepositReward(depositor, amount))
			}),
		},
		{
			Name:      "balance",
			Usage:     "show the balance of an account",
			ArgsUsage: "<asset> <account>",
			Flags:     flags,
			Action: withClient(2, func(c *client.Client, args []string) (any, error) {
				addrs, err := parseAddresses(args)
				if err != nil {
					return nil, err
				}
				balance, err := c.Balance(addrs[0], addrs[1])
				if err != nil {
					return nil, err
				}
				return map[string]any{"balance": balance}, nil
			}),
		},
		{
			Name:      "approve",
			Usage:     "let spender move up to amount of the owner's asset",
			ArgsUsage: "<asset> <owner> <spender> <amount>",
			Flags:     flags,
			Action: withClient(4, func(c *client.Client, args []string) (any, error) {
				addrs, err := parseAddresses(args[:3])
				if err != nil {
					return nil, err
				}
				amount, err := common.ParseAmount(args[3])
				if err != nil {
					return nil, errors.WithMessage(err, "amount")
				}
				return success(c.Approve(addrs[0], addrs[1], addrs[2], amount))
			}),
		},
		{
			Name:      "transfer",
			Usage:     "move an amount of asset between accounts",
			ArgsUsage: "<asset> <from> <to> <amount>",
			Flags:     flags,
			Action: withClient(4, func(c *client.Client, args []string) (any, error) {
				addrs, err := parseAddresses(args[:3])
				if err != nil {
					return nil, err
				}
				amount, err := common.ParseAmount(args[3])
				if err != nil {
					return nil, errors.WithMessage(err, "amount")
				}
				return success(c.Transfer(addrs[0], addrs[1], addrs[2], amount))
			}),
		},
		{
			Name:      "mint",
			Usage:     "create an amount of asset, on nodes running a faucet",
			ArgsUsage: "<asset> <to> <amount>",
			Flags:     flags,
			Action: withClient(3, func(c *client.Client, args []string) (any, error) {
				addrs, err := parseAddresses(args[:2])
				if err != nil {
					return nil, err
				}
				amount, err := common.ParseAmount(args[2])
				if err != nil {
					return nil, errors.WithMessage(err, "amount")
				}
				return success(c.Mint(addrs[0], addrs[1], amount))
			}),
		},
	}
}

func newClient(ctx *cli.Context) *client.Client {
	return client.NewWithHTTP(ctx.String(nodeFlag.Name), &http.Client{Timeout: ctx.Duration(timeoutFlag.Name)})
}

// withClient builds an action taking exactly nArgs arguments and printing the result as JSON.
func withClient(nArgs int, fn func(c *client.Client, args []string) (any, error)) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if ctx.NArg() != nArgs {
			return errors.Errorf("expected %d arguments, got %d: %s", nArgs, ctx.NArg(), ctx.Command.ArgsUsage)
		}
		res, err := fn(newClient(ctx), ctx.Args())
		if err != nil {
			return err
		}
		return printJSON(res)
	}
}

func success(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return &pool.Result{Success: true}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAddress accepts a hex address, or '@name' for the address derived from name.
func parseAddress(s string) (common.Address, error) {
	if name, ok := strings.CutPrefix(s, "@"); ok {
		if name == "" {
			return common.Address{}, errors.New("empty name")
		}
		return common.NameToAddress(name), nil
	}
	return common.ParseAddress(s)
}

func parseAddresses(args []string) ([]common.Address, error) {
	addrs := make([]common.Address, 0, len(args))
	for i, arg := range args {
		addr, err := parseAddress(arg)
		if err != nil {
			return nil, errors.WithMessagef(err, "argument %d", i+1)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func parseAccountAmount(account, amount string) (common.Address, *uint256.Int, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return common.Address{}, nil, errors.WithMessage(err, "account")
	}
	v, err := common.ParseAmount(amount)
	if err != nil {
		return common.Address{}, nil, errors.WithMessage(err, "amount")
	}
	return addr, v, nil
}

type status struct {
	Pool    *pool.Summary  `json:"pool"`
	Stakers []*pool.Staker `json:"stakers"`
	Dust    *uint256.Int   `json:"dust"`
}

func statusAction(ctx *cli.Context) error {
	c := newClient(ctx)

	var res status
	var g errgroup.Group
	g.Go(func() (err error) {
		res.Pool, err = c.Pool()
		return
	})
	g.Go(func() (err error) {
		res.Stakers, err = c.Stakers()
		return
	})
	g.Go(func() (err error) {
		res.Dust, err = c.Dust()
		return
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return printJSON(&res)
}
