package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/domain/ports/adapter"
)

var (
	_ adapter.DisplayNameLookup = (*MemberDirectory)(nil)
	_ adapter.WalletLookup      = (*MemberDirectory)(nil)
)

// MemberDirectory maps member ids to display names and wallet addresses.
// Members self-register; an unknown id is not an error, lookups return the
// zero value and the caller falls back to the raw id.
type MemberDirectory struct{ pool *pgxpool.Pool }

func NewMemberDirectory(pool *pgxpool.Pool) *MemberDirectory {
	return &MemberDirectory{pool: pool}
}

// Upsert registers or refreshes a member. Empty fields keep their stored
// value so a wallet registration does not wipe the display name.
func (d *MemberDirectory) Upsert(ctx context.Context, memberID, displayName, wallet string) error {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO members (member_id, display_name, wallet_address, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (member_id) DO UPDATE SET
    display_name   = CASE WHEN EXCLUDED.display_name   = '' THEN members.display_name   ELSE EXCLUDED.display_name   END,
    wallet_address = CASE WHEN EXCLUDED.wallet_address = '' THEN members.wallet_address ELSE EXCLUDED.wallet_address END,
    updated_at     = EXCLUDED.updated_at;`

	if _, err := execSQL(ctx, d.pool, nil, q, memberID, displayName, wallet, time.Now()); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (d *MemberDirectory) DisplayName(ctx context.Context, memberID string) (string, error) {
	return d.lookup(ctx, memberID, "display_name")
}

func (d *MemberDirectory) Wallet(ctx context.Context, memberID string) (string, error) {
	return d.lookup(ctx, memberID, "wallet_address")
}

func (d *MemberDirectory) lookup(ctx context.Context, memberID, column string) (string, error) {
	row, err := pickRow(ctx, d.pool, nil, `SELECT `+column+` FROM members WHERE member_id = $1;`, memberID)
	if err != nil {
		return "", domain.ErrOperationFailed
	}
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", domain.ErrReadDatabaseRow
	}
	return v, nil
}
