package database

import (
	"fmt"

	"gorm.io/gorm"

	"todolist-backend/internal/domain"
)

// policyDDL is applied after AutoMigrate. It turns the owner_id column into
// an enforced isolation boundary: row-level security evaluates every
// statement against the identity bound to the transaction via
// set_config('app.current_user_id', ...), so no application bug can read or
// write another user's rows. FORCE extends enforcement to the table owner,
// which is the role the application connects as.
//
// The updated_at trigger fires unconditionally before every UPDATE, so the
// column is a trustworthy last-modified signal regardless of what the
// client sends.
var policyDDL = []string{
	`DO $$ BEGIN
		ALTER TABLE todos
			ADD CONSTRAINT fk_todos_owner
			FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE;
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,

	`ALTER TABLE todos ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE todos FORCE ROW LEVEL SECURITY`,

	`DROP POLICY IF EXISTS todos_select_own ON todos`,
	`CREATE POLICY todos_select_own ON todos FOR SELECT
		USING (owner_id = current_setting('app.current_user_id', true)::uuid)`,

	`DROP POLICY IF EXISTS todos_insert_own ON todos`,
	`CREATE POLICY todos_insert_own ON todos FOR INSERT
		WITH CHECK (owner_id = current_setting('app.current_user_id', true)::uuid)`,

	`DROP POLICY IF EXISTS todos_update_own ON todos`,
	`CREATE POLICY todos_update_own ON todos FOR UPDATE
		USING (owner_id = current_setting('app.current_user_id', true)::uuid)
		WITH CHECK (owner_id = current_setting('app.current_user_id', true)::uuid)`,

	`DROP POLICY IF EXISTS todos_delete_own ON todos`,
	`CREATE POLICY todos_delete_own ON todos FOR DELETE
		USING (owner_id = current_setting('app.current_user_id', true)::uuid)`,

	`CREATE OR REPLACE FUNCTION todos_touch_updated_at() RETURNS trigger AS $$
	BEGIN
		NEW.updated_at = now();
		RETURN NEW;
	END $$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS todos_set_updated_at ON todos`,
	`CREATE TRIGGER todos_set_updated_at
		BEFORE UPDATE ON todos
		FOR EACH ROW EXECUTE FUNCTION todos_touch_updated_at()`,
}

// Migrate creates the schema and installs the authorization policies and
// the updated_at trigger. Idempotent, safe to run at every startup.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Todo{}); err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}

	for _, stmt := range policyDDL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply policy DDL: %w", err)
		}
	}
	return nil
}
