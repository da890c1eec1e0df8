package db

import (
	"context"

	"token-transfer-wallet/internal/model"
)

const defaultListLimit = 20

// RecordTransfer stores a dispatched transfer. Recording the same hash again
// updates its status.
func RecordTransfer(ctx context.Context, rec model.TransferRecord) error {
	if DB == nil {
		return ErrNotInitialized
	}
	_, err := DB.ExecContext(ctx, `INSERT INTO transfers (tx_hash, from_address, to_address, amount, status, block_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tx_hash) DO UPDATE SET status = EXCLUDED.status, block_number = EXCLUDED.block_number`,
		rec.TxHash, rec.FromAddress, rec.ToAddress, rec.Amount, rec.Status, int64(rec.BlockNumber), rec.CreatedAt)
	return err
}

// ListTransfers returns the newest transfers sent from or to account.
func ListTransfers(ctx context.Context, account string, limit int) ([]model.TransferRecord, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := DB.QueryContext(ctx, `SELECT tx_hash, from_address, to_address, amount::text, status, block_number, created_at
		FROM transfers
		WHERE lower(from_address) = lower($1) OR lower(to_address) = lower($1)
		ORDER BY created_at DESC
		LIMIT $2`, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.TransferRecord
	for rows.Next() {
		var (
			rec   model.TransferRecord
			block int64
		)
		if err := rows.Scan(&rec.TxHash, &rec.FromAddress, &rec.ToAddress, &rec.Amount, &rec.Status, &block, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.BlockNumber = uint64(block)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Journal adapts the package-level connection to the transfer workflow.
type Journal struct{}

func (Journal) RecordTransfer(ctx context.Context, rec model.TransferRecord) error {
	return RecordTransfer(ctx, rec)
}
