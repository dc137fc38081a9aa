package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// migration pairs a stable name with the DDL it applies.  Migrations are
// embedded in the binary so a fresh deployment needs no external files; each
// one runs at most once, tracked in the schema_migrations table.
type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{"001_restaurant_tables", `
		CREATE TABLE IF NOT EXISTS restaurant_tables (
			id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			table_number  VARCHAR(16)  NOT NULL UNIQUE,
			capacity      INT UNSIGNED NOT NULL DEFAULT 4,
			min_capacity  INT UNSIGNED NOT NULL DEFAULT 1,
			status        ENUM('available','occupied','reserved','maintenance') NOT NULL DEFAULT 'available',
			location      VARCHAR(64)  NOT NULL DEFAULT '',
			is_active     TINYINT(1)   NOT NULL DEFAULT 1,
			created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`},
	{"002_stations", `
		CREATE TABLE IF NOT EXISTS stations (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name       VARCHAR(64) NOT NULL UNIQUE,
			is_active  TINYINT(1)  NOT NULL DEFAULT 1,
			created_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"003_menu_items", `
		CREATE TABLE IF NOT EXISTS menu_items (
			id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name         VARCHAR(128)    NOT NULL,
			price_cents  BIGINT          NOT NULL,
			station_id   BIGINT UNSIGNED NOT NULL,
			is_available TINYINT(1)      NOT NULL DEFAULT 1,
			is_active    TINYINT(1)      NOT NULL DEFAULT 1,
			created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_menu_items_station (station_id)
		)`},
	{"004_staff", `
		CREATE TABLE IF NOT EXISTS staff (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name       VARCHAR(128) NOT NULL,
			role       ENUM('WAITER','CHEF','CASHIER','MANAGER') NOT NULL,
			is_active  TINYINT(1)   NOT NULL DEFAULT 1,
			created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"005_orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id                  BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_number        VARCHAR(32)     NOT NULL UNIQUE,
			table_id            BIGINT UNSIGNED NOT NULL,
			staff_id            BIGINT UNSIGNED NULL,
			status              ENUM('pending','confirmed','ready','serving','completed','cancelled') NOT NULL DEFAULT 'pending',
			total_amount_cents  BIGINT          NOT NULL DEFAULT 0,
			discount_cents      BIGINT          NOT NULL DEFAULT 0,
			tax_cents           BIGINT          NOT NULL DEFAULT 0,
			final_amount_cents  BIGINT          NOT NULL DEFAULT 0,
			customer_name       VARCHAR(128)    NULL,
			customer_phone      VARCHAR(32)     NULL,
			party_size          INT UNSIGNED    NULL,
			notes               TEXT            NULL,
			cancellation_reason VARCHAR(255)    NULL,
			order_time          DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			confirmed_at        DATETIME        NULL,
			completed_at        DATETIME        NULL,
			cancelled_at        DATETIME        NULL,
			updated_at          DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_orders_table (table_id),
			KEY idx_orders_status (status),
			CONSTRAINT fk_orders_table FOREIGN KEY (table_id) REFERENCES restaurant_tables (id)
		)`},
	{"006_order_items", `
		CREATE TABLE IF NOT EXISTS order_items (
			id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id         BIGINT UNSIGNED NOT NULL,
			item_id          BIGINT UNSIGNED NOT NULL,
			quantity         INT UNSIGNED    NOT NULL,
			unit_price_cents BIGINT          NOT NULL,
			total_price_cents BIGINT         NOT NULL,
			special_request  VARCHAR(255)    NULL,
			status           ENUM('pending','ready','served','cancelled') NOT NULL DEFAULT 'pending',
			dispatched       TINYINT(1)      NOT NULL DEFAULT 0,
			kitchen_order_id BIGINT UNSIGNED NULL,
			created_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_order_items_order (order_id),
			KEY idx_order_items_kitchen (kitchen_order_id),
			CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
		)`},
	{"007_kitchen_orders", `
		CREATE TABLE IF NOT EXISTS kitchen_orders (
			id                        BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id                  BIGINT UNSIGNED NOT NULL,
			station_id                BIGINT UNSIGNED NOT NULL,
			chef_id                   BIGINT UNSIGNED NULL,
			status                    ENUM('pending','preparing','ready','completed','cancelled') NOT NULL DEFAULT 'pending',
			priority                  INT             NOT NULL DEFAULT 0,
			notes                     VARCHAR(255)    NOT NULL DEFAULT '',
			cancellation_requested    TINYINT(1)      NOT NULL DEFAULT 0,
			cancellation_reason       VARCHAR(255)    NULL,
			cancellation_requested_at DATETIME        NULL,
			started_at                DATETIME        NULL,
			completed_at              DATETIME        NULL,
			created_at                DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at                DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_kitchen_orders_order (order_id),
			KEY idx_kitchen_orders_queue (status, priority),
			CONSTRAINT fk_kitchen_orders_order FOREIGN KEY (order_id) REFERENCES orders (id)
		)`},
	{"008_bills", `
		CREATE TABLE IF NOT EXISTS bills (
			id                 BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			bill_number        VARCHAR(32)     NOT NULL UNIQUE,
			order_id           BIGINT UNSIGNED NOT NULL UNIQUE,
			subtotal_cents     BIGINT          NOT NULL DEFAULT 0,
			discount_cents     BIGINT          NOT NULL DEFAULT 0,
			tax_cents          BIGINT          NOT NULL DEFAULT 0,
			total_amount_cents BIGINT          NOT NULL DEFAULT 0,
			paid_cents         BIGINT          NOT NULL DEFAULT 0,
			change_cents       BIGINT          NOT NULL DEFAULT 0,
			payment_status     ENUM('pending','paid','cancelled','refunded') NOT NULL DEFAULT 'pending',
			paid_at            DATETIME        NULL,
			created_at         DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_bills_order FOREIGN KEY (order_id) REFERENCES orders (id)
		)`},
	{"009_payments", `
		CREATE TABLE IF NOT EXISTS payments (
			id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			bill_id        BIGINT UNSIGNED NOT NULL,
			method         VARCHAR(32)     NOT NULL,
			amount_cents   BIGINT          NOT NULL,
			transaction_id VARCHAR(64)     NULL,
			status         ENUM('pending','paid','cancelled','refunded') NOT NULL DEFAULT 'paid',
			created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_payments_bill (bill_id),
			CONSTRAINT fk_payments_bill FOREIGN KEY (bill_id) REFERENCES bills (id)
		)`},
}

// RunMigrations applies all pending embedded migrations in order.  Each
// applied migration is recorded in schema_migrations so reruns are no-ops.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations (migration_name) VALUES (?)`, m.name); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
		log.Printf("migration applied: %s", m.name)
	}
	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT migration_name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
