package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateBill inserts the bill, its items and its splits in one transaction.
// Any failure leaves no trace of the bill.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bills (id, title, description, total, created_by, group_id, bill_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID,
			bill.Title,
			bill.Description,
			bill.Total.String(),
			bill.CreatedBy,
			nullableString(bill.GroupID),
			bill.BillDate,
			bill.CreatedAt,
		)
		if err != nil {
			return classify(fmt.Errorf("failed to insert bill: %w", err))
		}

		for i, item := range bill.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO bill_items (id, bill_id, position, label, cost) VALUES (?, ?, ?, ?, ?)`,
				item.ID, bill.ID, i, item.Label, item.Cost.String(),
			)
			if err != nil {
				return classify(fmt.Errorf("failed to insert item %q: %w", item.Label, err))
			}
		}

		for i, split := range bill.Splits {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO bill_splits (bill_id, user_id, position, amount, paid, paid_at, paid_by)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				bill.ID, split.UserID, i, split.Amount.String(), split.Paid, split.PaidAt, split.PaidBy,
			)
			if err != nil {
				return classify(fmt.Errorf("failed to insert split for %s: %w", split.UserID, err))
			}
		}

		return nil
	})
}

// GetBill retrieves a bill with its items and splits.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	var bill *models.Bill
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		bills, err := loadBills(ctx, tx,
			`SELECT id, title, description, total, created_by, group_id, bill_date, created_at
			 FROM bills WHERE id = ?`,
			billID,
		)
		if err != nil {
			return err
		}
		if len(bills) == 0 {
			return errs.NotFound("bill", billID)
		}
		bill = &bills[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBillsForUser returns every bill userID created or holds a split on,
// newest first.
func (s *SQLiteStore) ListBillsForUser(ctx context.Context, userID string) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		bills, err = loadBills(ctx, tx,
			`SELECT id, title, description, total, created_by, group_id, bill_date, created_at
			 FROM bills
			 WHERE id IN (
			     SELECT id FROM bills WHERE created_by = ?
			     UNION
			     SELECT bill_id FROM bill_splits WHERE user_id = ?
			 )
			 ORDER BY bill_date DESC, created_at DESC, id`,
			userID, userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// loadBills runs a bill header query and attaches items and splits.
func loadBills(ctx context.Context, q queryer, query string, args ...any) ([]models.Bill, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query bills: %w", err))
	}
	defer rows.Close()

	var bills []models.Bill
	index := make(map[string]int)
	for rows.Next() {
		var b models.Bill
		var groupID sql.NullString
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Description,
			&b.Total,
			&b.CreatedBy,
			&groupID,
			&b.BillDate,
			&b.CreatedAt,
		); err != nil {
			return nil, classify(fmt.Errorf("failed to scan bill: %w", err))
		}
		b.GroupID = groupID.String
		index[b.ID] = len(bills)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate bills: %w", err))
	}
	rows.Close()

	if len(bills) == 0 {
		return bills, nil
	}

	ids := make([]string, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}

	if err := loadItems(ctx, q, ids, bills, index); err != nil {
		return nil, err
	}
	if err := loadSplits(ctx, q, ids, bills, index); err != nil {
		return nil, err
	}
	return bills, nil
}

func loadItems(ctx context.Context, q queryer, ids []string, bills []models.Bill, index map[string]int) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, bill_id, label, cost FROM bill_items
		 WHERE bill_id IN (`+placeholders(len(ids))+`)
		 ORDER BY bill_id, position`,
		stringArgs(ids)...,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to get items: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var item models.Item
		var billID string
		if err := rows.Scan(&item.ID, &billID, &item.Label, &item.Cost); err != nil {
			return classify(fmt.Errorf("failed to scan item: %w", err))
		}
		i := index[billID]
		bills[i].Items = append(bills[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return classify(fmt.Errorf("failed to iterate items: %w", err))
	}
	return nil
}

func loadSplits(ctx context.Context, q queryer, ids []string, bills []models.Bill, index map[string]int) error {
	rows, err := q.QueryContext(ctx,
		`SELECT bill_id, user_id, amount, paid, paid_at, paid_by FROM bill_splits
		 WHERE bill_id IN (`+placeholders(len(ids))+`)
		 ORDER BY bill_id, position`,
		stringArgs(ids)...,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to get splits: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		if err := scanSplit(rows, &split); err != nil {
			return err
		}
		i := index[split.BillID]
		bills[i].Splits = append(bills[i].Splits, split)
	}
	if err := rows.Err(); err != nil {
		return classify(fmt.Errorf("failed to iterate splits: %w", err))
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSplit(row scanner, split *models.Split) error {
	if err := row.Scan(
		&split.BillID,
		&split.UserID,
		&split.Amount,
		&split.Paid,
		&split.PaidAt,
		&split.PaidBy,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return classify(fmt.Errorf("failed to scan split: %w", err))
	}
	return nil
}

// MarkSplitPaid flips one split from unpaid to paid.
// The UPDATE is conditional on paid = 0, so of two concurrent callers exactly
// one observes the transition and the other reads back the stored values.
func (s *SQLiteStore) MarkSplitPaid(ctx context.Context, billID, userID, actingUserID string, paidAt int64) (*models.Split, bool, error) {
	var split models.Split
	var transitioned bool
	err := s.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE bill_splits SET paid = 1, paid_at = ?, paid_by = ?
			 WHERE bill_id = ? AND user_id = ? AND paid = 0`,
			paidAt, actingUserID, billID, userID,
		)
		if err != nil {
			return classify(fmt.Errorf("failed to mark split paid: %w", err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return classify(fmt.Errorf("failed to mark split paid: %w", err))
		}
		transitioned = n > 0

		err = scanSplit(tx.QueryRowContext(ctx,
			`SELECT bill_id, user_id, amount, paid, paid_at, paid_by FROM bill_splits
			 WHERE bill_id = ? AND user_id = ?`,
			billID, userID,
		), &split)
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("split", billID+"/"+userID)
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return &split, transitioned, nil
}

// nullableString maps "" to SQL NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
