package push

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/spotsurfer/internal/db"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists subscriptions in the push_subscriptions table.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore creates a SQLiteStore on a migrated database.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{conn: conn}
}

func (s *SQLiteStore) Add(ctx context.Context, sub Subscription) (Subscription, error) {
	var stored Subscription
	err := db.WithinTx(ctx, s.conn, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO push_subscriptions (id, endpoint, p256dh, auth, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(endpoint) DO UPDATE SET p256dh = excluded.p256dh, auth = excluded.auth`,
			sub.ID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, sub.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("upserting subscription: %w", err)
		}
		stored, err = getByEndpoint(ctx, tx, sub.Endpoint)
		return err
	})
	if err != nil {
		return Subscription{}, err
	}
	return stored, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, endpoints ...string) (int, error) {
	removed := 0
	err := db.WithinTx(ctx, s.conn, func(ctx context.Context, tx db.DBTX) error {
		for _, ep := range endpoints {
			res, err := tx.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, ep)
			if err != nil {
				return fmt.Errorf("deleting subscription: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("deleting subscription: %w", err)
			}
			removed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Subscription, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, endpoint, p256dh, auth, created_at FROM push_subscriptions ORDER BY created_at, endpoint`)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return out, nil
}

// RecordFailure stamps the last failed delivery time for endpoint.
func (s *SQLiteStore) RecordFailure(ctx context.Context, endpoint string, at time.Time) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE push_subscriptions SET last_failure_at = ? WHERE endpoint = ?`,
		at.UTC().Format(timeLayout), endpoint)
	if err != nil {
		return fmt.Errorf("recording failure: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func getByEndpoint(ctx context.Context, q db.DBTX, endpoint string) (Subscription, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, endpoint, p256dh, auth, created_at FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return Subscription{}, ErrNotFound
	}
	return sub, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(s scanner) (Subscription, error) {
	var (
		sub     Subscription
		created string
	)
	if err := s.Scan(&sub.ID, &sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth, &created); err != nil {
		if err == sql.ErrNoRows {
			return Subscription{}, err
		}
		return Subscription{}, fmt.Errorf("scanning subscription: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Subscription{}, fmt.Errorf("parsing created_at: %w", err)
	}
	sub.CreatedAt = t
	return sub, nil
}
