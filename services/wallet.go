// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/syncer"
)

type WalletService struct {
	*Services
}

func (s *WalletService) Get(ctx context.Context) (models.Wallet, error) {
	return syncer.Query(ctx, s.cache, syncer.Collection(KindWallet), func(ctx context.Context) (models.Wallet, error) {
		return apiclient.GetJSON[models.Wallet](ctx, s.client, "/wallet")
	})
}

func (s *WalletService) Transactions(ctx context.Context) ([]models.WalletTransaction, error) {
	return syncer.Query(ctx, s.cache, syncer.Collection(KindTransactions), func(ctx context.Context) ([]models.WalletTransaction, error) {
		return apiclient.GetJSON[[]models.WalletTransaction](ctx, s.client, "/wallet/transactions")
	})
}

// RedeemVoucher credits a voucher. The balance is not changed
// optimistically because the voucher's value is only known to the server.
func (s *WalletService) RedeemVoucher(ctx context.Context, code string) (models.Wallet, error) {
	req := models.RedeemVoucherRequest{Code: code}
	if err := models.Validate(req); err != nil {
		return models.Wallet{}, err
	}
	walletKey := syncer.Collection(KindWallet)

	return syncer.Mutate(ctx, s.cache, syncer.Mutation[models.Wallet]{
		Resource:     walletKey.String(),
		RequiresAuth: true,
		Do: func(ctx context.Context) (models.Wallet, error) {
			return apiclient.PostJSON[models.Wallet](ctx, s.client, "/wallet/vouchers", req)
		},
		Reconcile: func(w models.Wallet) []syncer.Write {
			return []syncer.Write{syncer.Confirm(walletKey, w)}
		},
		Invalidates: []syncer.Key{walletKey, syncer.Collection(KindTransactions)},
	})
}
