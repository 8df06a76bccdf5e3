// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/transactions"
)

var (
	purgeMailbox    bool
	purgePlayers    []string
	purgeEverything bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove data from the store",
	Example: `  plan purge --mailbox
  plan purge --player 8c1e2c4a-2d5e-4f0e-9a43-0d7d3a1c6b55
  plan purge --everything`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeMailbox && len(purgePlayers) == 0 && !purgeEverything {
			return errors.New("nothing to purge: pass --mailbox, --player or --everything")
		}

		ctx := cmd.Context()
		s, err := openStore(ctx, &cfg.Database, &cfg.Migration)
		if err != nil {
			return err
		}
		defer s.Close()

		var trs []database.Transaction
		if purgeEverything {
			trs = append(trs, transactions.RemoveEverything())
		}
		for _, p := range purgePlayers {
			trs = append(trs, transactions.RemovePlayer(p))
		}
		if purgeMailbox {
			trs = append(trs, transactions.PurgeExpiredMailbox(time.Now().UnixMilli()))
		}

		for _, t := range trs {
			if err := s.db.ExecuteTransaction(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s done\n", t.Name())
		}
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeMailbox, "mailbox", false, "remove expired mailbox entries")
	purgeCmd.Flags().StringSliceVar(&purgePlayers, "player", nil, "remove every row of the player with this uuid (repeatable)")
	purgeCmd.Flags().BoolVar(&purgeEverything, "everything", false, "remove all data, keeping the schema")
}
