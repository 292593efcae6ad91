package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitTables, downInitTables)
}

func upInitTables(ctx context.Context, tx *sql.Tx) error {
	// Create users table
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			avatar_url VARCHAR(512) NOT NULL DEFAULT '',
			bank_info VARCHAR(255) NOT NULL DEFAULT '',
			flat_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Create flats table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE flats (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			join_code VARCHAR(6) NOT NULL UNIQUE,
			created_by UUID NOT NULL,
			rent_cents BIGINT NOT NULL DEFAULT 0,
			rent_due_day INT NOT NULL DEFAULT 0,
			electricity_cap_cents BIGINT NOT NULL DEFAULT 0,
			internet_bill_cents BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Create flat_members table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE flat_members (
			flat_id UUID NOT NULL,
			member_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (flat_id, member_id),
			CONSTRAINT fk_flat_members_flat
				FOREIGN KEY(flat_id)
				REFERENCES flats(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	// Create expenses table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE expenses (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			amount_cents BIGINT NOT NULL,
			category INT NOT NULL,
			kind INT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			created_by UUID NOT NULL,
			flat_id UUID,
			split_method INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_expenses_created_by_date ON expenses(created_by, date);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_expenses_flat_id ON expenses(flat_id);`)
	if err != nil {
		return err
	}

	// Create expense_splits table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE expense_splits (
			expense_id UUID NOT NULL,
			member_id UUID NOT NULL,
			amount_cents BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (expense_id, member_id),
			CONSTRAINT fk_expense_splits_expense
				FOREIGN KEY(expense_id)
				REFERENCES expenses(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_expense_splits_member_id ON expense_splits(member_id);`)
	if err != nil {
		return err
	}

	return nil
}

func downInitTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS expense_splits;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS expenses;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS flat_members;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS flats;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS users;`)
	if err != nil {
		return err
	}

	return nil
}
