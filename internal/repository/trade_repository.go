package repository

import (
    "context"
    "database/sql"
    "fmt"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// TradeRepo is the MySQL implementation of exchange.TradeLedger.  The
// trade_ledger table holds a single counter row; making the counter an
// explicit piece of owned state (instead of an ambient global) is what
// lets the increment and the posting withdrawal share one transaction.
type TradeRepo struct {
    db *sql.DB
}

// NewTradeRepo constructs a TradeRepo with the given DB handle.
func NewTradeRepo(db *sql.DB) *TradeRepo { return &TradeRepo{db: db} }

var _ exchange.TradeLedger = (*TradeRepo)(nil)

// ledgerRow is the fixed id of the single counter row.
const ledgerRow = 1

// RecordAndWithdraw increments the traded-tickets counter by the
// posting's count and deletes the posting, inside one transaction.
// The increment executes first so a failed withdrawal rolls both back;
// a trade is never recorded with its ticket still on the book, and a
// posting never leaves the book uncounted.
func (r *TradeRepo) RecordAndWithdraw(ctx context.Context, p model.Posting) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if _, err := tx.ExecContext(ctx,
        `UPDATE trade_ledger SET total_tickets = total_tickets + ? WHERE id = ?`,
        p.Tickets, ledgerRow); err != nil {
        return fmt.Errorf("increment counter: %w", err)
    }

    res, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE id = ?`, p.ID)
    if err != nil {
        return fmt.Errorf("withdraw posting: %w", err)
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Posting vanished between the lookup and the trade; rolling
        // back keeps the counter honest.
        return exchange.ErrNotFound
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// TotalTraded returns the process-wide count of tickets traded.
func (r *TradeRepo) TotalTraded(ctx context.Context) (uint64, error) {
    var total uint64
    err := r.db.QueryRowContext(ctx,
        `SELECT total_tickets FROM trade_ledger WHERE id = ?`, ledgerRow).Scan(&total)
    if err == sql.ErrNoRows {
        return 0, nil
    }
    return total, err
}

// EnsureLedgerRow creates the counter row if the table is empty.  Main
// calls this once at startup so increments never hit a missing row.
func (r *TradeRepo) EnsureLedgerRow(ctx context.Context) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT IGNORE INTO trade_ledger (id, total_tickets) VALUES (?, 0)`, ledgerRow)
    return err
}
