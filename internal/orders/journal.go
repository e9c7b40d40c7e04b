package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JournalRepo menyimpan setiap keputusan operator ke tabel order_decisions
// (schema: postgres.Migrate).
type JournalRepo struct{ DB *pgxpool.Pool }

func (r *JournalRepo) Record(ctx context.Context, d Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_decisions(id, order_id, merchant_id, action, reason, otp, ok, error, decided_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO NOTHING`,
		d.ID, d.OrderID, d.MerchantID, string(d.Action), d.Reason, d.OTP, d.OK, d.Error, d.DecidedAt,
	)
	return err
}

// Recent returns the newest decisions for a merchant, newest first.
func (r *JournalRepo) Recent(ctx context.Context, merchantID string, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, merchant_id, action, reason, otp, ok, error, decided_at
		FROM order_decisions
		WHERE merchant_id = $1
		ORDER BY decided_at DESC
		LIMIT $2`, merchantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Decision{}
	for rows.Next() {
		var (
			d      Decision
			action string
		)
		if err := rows.Scan(&d.ID, &d.OrderID, &d.MerchantID, &action, &d.Reason, &d.OTP, &d.OK, &d.Error, &d.DecidedAt); err != nil {
			return nil, err
		}
		d.Action = Action(action)
		out = append(out, d)
	}
	return out, rows.Err()
}
