// Package repository содержит реализации хранилища заказов: в памяти и в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// FormatOrderID формирует идентификатор заказа по порядковому номеру: 7 -> "ORD-007".
func FormatOrderID(n int64) string {
	return fmt.Sprintf("ORD-%03d", n)
}

// PostgresRepository предоставляет доступ к хранилищу заказов в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(retryDelays); i++ {
		err = fn()
		if err == nil || !isRetryable(err) || i == len(retryDelays) {
			return err
		}

		timer := time.NewTimer(retryDelays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateOrder сохраняет новый заказ вместе с позициями и историей.
// Идентификатор выдаёт последовательность order_number_seq.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var id string
		err = tx.QueryRow(ctx,
			`INSERT INTO orders (table_number, customer_name, customer_id, source, status,
			                     total_cents, estimated_time, assigned_waiter, assigned_chef, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			o.TableNumber, o.CustomerName, nullable(o.CustomerID), string(o.Source), string(o.Status),
			o.TotalCents(), o.EstimatedTime, nullable(o.AssignedWaiter), nullable(o.AssignedChef), o.CreatedAt,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertItems(ctx, tx, id, o.Items); err != nil {
			return err
		}
		if err := insertTimeline(ctx, tx, id, o.Timeline); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		o.ID = id
		o.Revision = 1
		return nil
	})
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrders+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: order %s", model.ErrNotFound, id)
	}

	if err := r.loadDetails(ctx, orders, []string{id}); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// ListOrders возвращает все заказы в порядке добавления в хранилище, как и MemoryRepository.
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, listOrders)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.loadDetails(ctx, orders, nil); err != nil {
		return nil, err
	}

	return orders, nil
}

// SaveOrder сохраняет изменённый заказ. Запись проходит только при совпадении ревизии;
// позиции перезаписываются целиком, в историю добавляются только новые записи.
func (r *PostgresRepository) SaveOrder(ctx context.Context, o *model.Order) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		cmdTag, err := tx.Exec(ctx,
			`UPDATE orders
			 SET status = $3, total_cents = $4, estimated_time = $5,
			     assigned_waiter = $6, assigned_chef = $7, revision = revision + 1
			 WHERE id = $1 AND revision = $2`,
			o.ID, o.Revision, string(o.Status), o.TotalCents(), o.EstimatedTime,
			nullable(o.AssignedWaiter), nullable(o.AssignedChef),
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			var revision int64
			err := tx.QueryRow(ctx, `SELECT revision FROM orders WHERE id = $1`, o.ID).Scan(&revision)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: order %s", model.ErrNotFound, o.ID)
			}
			if err != nil {
				return fmt.Errorf("select revision: %w", err)
			}
			return fmt.Errorf("%w: order %s has revision %d, got %d", model.ErrStaleRevision, o.ID, revision, o.Revision)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
			return err
		}
		if err := insertTimeline(ctx, tx, o.ID, o.Timeline); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		o.Revision++
		return nil
	})
}

const selectOrders = `SELECT id, table_number, customer_name, customer_id, source, status,
	estimated_time, assigned_waiter, assigned_chef, revision, created_at
	FROM orders`

const listOrders = selectOrders + ` ORDER BY seq`

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			o                            model.Order
			source, status               string
			customerID, waiter, chefName *string
		)
		if err := rows.Scan(&o.ID, &o.TableNumber, &o.CustomerName, &customerID, &source, &status,
			&o.EstimatedTime, &waiter, &chefName, &o.Revision, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		o.Source = model.OrderSource(source)
		o.Status = model.OrderStatus(status)
		o.CustomerID = deref(customerID)
		o.AssignedWaiter = deref(waiter)
		o.AssignedChef = deref(chefName)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// loadDetails дозагружает позиции и историю. Пустой ids означает все заказы.
func (r *PostgresRepository) loadDetails(ctx context.Context, orders []model.Order, ids []string) error {
	byID := make(map[string]*model.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	itemRows, err := r.pool.Query(ctx,
		`SELECT order_id, id, name, quantity, price_cents, modifications, special_instructions
		 FROM order_items
		 WHERE $1::text[] IS NULL OR order_id = ANY($1)
		 ORDER BY order_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("select items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID    string
			it         model.OrderItem
			priceCents int64
		)
		if err := itemRows.Scan(&orderID, &it.ID, &it.Name, &it.Quantity, &priceCents, &it.Modifications, &it.SpecialInstructions); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		it.Price = float64(priceCents) / 100

		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	timelineRows, err := r.pool.Query(ctx,
		`SELECT order_id, occurred_at, event, actor, details
		 FROM order_timeline
		 WHERE $1::text[] IS NULL OR order_id = ANY($1)
		 ORDER BY order_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("select timeline: %w", err)
	}
	defer timelineRows.Close()

	for timelineRows.Next() {
		var (
			orderID string
			e       model.TimelineEntry
		)
		if err := timelineRows.Scan(&orderID, &e.Timestamp, &e.Event, &e.Actor, &e.Details); err != nil {
			return fmt.Errorf("scan timeline: %w", err)
		}

		if o, ok := byID[orderID]; ok {
			o.Timeline = append(o.Timeline, e)
		}
	}
	if err := timelineRows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	for i := range orders {
		orders[i].TotalAmount = float64(orders[i].TotalCents()) / 100
	}

	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []model.OrderItem) error {
	batch := &pgx.Batch{}
	for pos, it := range items {
		mods := it.Modifications
		if mods == nil {
			mods = []string{}
		}
		batch.Queue(
			`INSERT INTO order_items (id, order_id, position, name, quantity, price_cents, modifications, special_instructions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, orderID, pos, it.Name, it.Quantity, it.PriceCents(), mods, it.SpecialInstructions,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func insertTimeline(ctx context.Context, tx pgx.Tx, orderID string, timeline []model.TimelineEntry) error {
	batch := &pgx.Batch{}
	for pos, e := range timeline {
		batch.Queue(
			`INSERT INTO order_timeline (order_id, position, occurred_at, event, actor, details)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (order_id, position) DO NOTHING`,
			orderID, pos, e.Timestamp, e.Event, e.Actor, e.Details,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
