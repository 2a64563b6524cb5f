// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func walletCmd(a func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show your balance and redeem vouchers",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show balance and recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a().svc.Wallet.Get(cmd.Context())
			if err != nil {
				return err
			}
			out := a().out
			fmt.Fprintf(out, "Balance: %s (updated %s)\n", money(w.BalanceMinor, w.Currency), when(w.UpdatedAt))

			txns, err := a().svc.Wallet.Transactions(cmd.Context())
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			tw := table(out)
			row(tw, "WHEN", "KIND", "AMOUNT", "REFERENCE")
			for _, t := range txns {
				row(tw, when(t.CreatedAt), t.Kind, money(t.AmountMinor, w.Currency), t.Reference)
			}
			return tw.Flush()
		},
	}

	redeem := &cobra.Command{
		Use:   "redeem <code>",
		Short: "Redeem a voucher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a().svc.Wallet.RedeemVoucher(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a().out, "Voucher redeemed. Balance: %s\n", money(w.BalanceMinor, w.Currency))
			return nil
		},
	}

	cmd.AddCommand(show, redeem)
	return cmd
}
