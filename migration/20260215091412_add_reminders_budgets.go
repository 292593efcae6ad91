package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddRemindersBudgets, downAddRemindersBudgets)
}

func upAddRemindersBudgets(ctx context.Context, tx *sql.Tx) error {
	// Create reminders table
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE reminders (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description VARCHAR(1024) NOT NULL DEFAULT '',
			type INT NOT NULL,
			amount_cents BIGINT NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			status INT NOT NULL DEFAULT 0,
			user_id UUID NOT NULL,
			flat_id UUID,
			recur_days INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_reminders_user_id_due_date ON reminders(user_id, due_date);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_reminders_status_due_date ON reminders(status, due_date);`)
	if err != nil {
		return err
	}

	// Create budgets table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE budgets (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			category INT,
			limit_cents BIGINT NOT NULL,
			period INT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_budgets_user_id_start_date ON budgets(user_id, start_date);`)
	if err != nil {
		return err
	}

	return nil
}

func downAddRemindersBudgets(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS budgets;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS reminders;`)
	if err != nil {
		return err
	}

	return nil
}
