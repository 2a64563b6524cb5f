// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/middleware"
	"github.com/danielhkuo/wayfare/models"
)

var (
	errVoucherNotFound = errors.New("voucher not found")
	errVoucherRedeemed = errors.New("voucher already redeemed")
)

type WalletHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewWalletHandler(db *sql.DB, cfg cliparse.Config) *WalletHandler {
	return &WalletHandler{db: db, cfg: cfg}
}

// Get handles GET /wallet
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.load(h.db, middleware.UserID(r.Context()))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Wallet not found")
		return
	}
	if err != nil {
		slog.Error("failed to query wallet", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, wallet)
}

// RedeemVoucher handles POST /wallet/vouchers
// Credits the voucher amount once and returns the updated wallet.
func (h *WalletHandler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req models.RedeemVoucherRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	wallet, err := h.redeem(userID, code)
	switch {
	case errors.Is(err, errVoucherNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voucher not found")
		return
	case errors.Is(err, errVoucherRedeemed):
		middleware.ErrorResponse(w, http.StatusConflict, "Voucher already redeemed")
		return
	case errors.Is(err, sql.ErrNoRows):
		middleware.ErrorResponse(w, http.StatusNotFound, "Wallet not found")
		return
	case err != nil:
		slog.Error("failed to redeem voucher", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to redeem voucher")
		return
	}

	slog.Info("voucher redeemed", "user_id", userID, "code", code, "balance_minor", wallet.BalanceMinor)
	middleware.JSONResponse(w, http.StatusOK, wallet)
}

// Transactions handles GET /wallet/transactions
// Newest first.
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, kind, amount_minor, reference, created_at
		FROM wallet_transaction
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, middleware.UserID(r.Context()))
	if err != nil {
		slog.Error("failed to query transactions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	txns := []models.WalletTransaction{}
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(&t.ID, &t.Kind, &t.AmountMinor, &t.Reference, &t.CreatedAt); err != nil {
			slog.Error("failed to scan transaction", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate transactions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, txns)
}

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (h *WalletHandler) load(q queryRower, userID string) (models.Wallet, error) {
	var wallet models.Wallet
	err := q.QueryRow(`
		SELECT user_id, balance_minor, currency, updated_at FROM wallet WHERE user_id = $1
	`, userID).Scan(&wallet.UserID, &wallet.BalanceMinor, &wallet.Currency, &wallet.UpdatedAt)
	return wallet, err
}

// redeem marks the voucher used, credits the wallet and records the
// transaction in one database transaction.
func (h *WalletHandler) redeem(userID, code string) (models.Wallet, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return models.Wallet{}, err
	}
	defer tx.Rollback()

	var (
		amount     int64
		redeemedBy sql.NullString
	)
	err = tx.QueryRow(`SELECT amount_minor, redeemed_by FROM voucher WHERE code = $1`, code).Scan(&amount, &redeemedBy)
	if err == sql.ErrNoRows {
		return models.Wallet{}, errVoucherNotFound
	}
	if err != nil {
		return models.Wallet{}, err
	}
	if redeemedBy.Valid {
		return models.Wallet{}, errVoucherRedeemed
	}

	now := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE voucher SET redeemed_by = $1, redeemed_at = $2
		WHERE code = $3 AND redeemed_by IS NULL
	`, userID, now, code)
	if err != nil {
		return models.Wallet{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Wallet{}, errVoucherRedeemed
	}

	res, err = tx.Exec(`
		UPDATE wallet SET balance_minor = balance_minor + $1, updated_at = $2
		WHERE user_id = $3
	`, amount, now, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Wallet{}, sql.ErrNoRows
	}

	txnID, err := auth.GenerateID(12)
	if err != nil {
		return models.Wallet{}, err
	}
	_, err = tx.Exec(`
		INSERT INTO wallet_transaction (id, user_id, kind, amount_minor, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, txnID, userID, models.TxnVoucher, amount, code, now)
	if err != nil {
		return models.Wallet{}, err
	}

	wallet, err := h.load(tx, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return wallet, tx.Commit()
}
