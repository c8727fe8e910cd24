package familykit

import (
	"github.com/fernandezvara/dbkit"
)

// Migrations returns all database migrations for the resource tables.
// Use db.Migrate(ctx, familykit.Migrations()) to run them.
func Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "familykit-001",
			Description: "Create families table",
			SQL: `
                CREATE TABLE IF NOT EXISTS families (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    owner_id TEXT NOT NULL,
                    name TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "familykit-002",
			Description: "Create tasks and task_details tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS tasks (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
                    user_id TEXT NOT NULL,
                    title TEXT NOT NULL,
                    reward BIGINT NOT NULL DEFAULT 0,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE TABLE IF NOT EXISTS task_details (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
                    user_id TEXT NOT NULL,
                    description TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "familykit-003",
			Description: "Create works table",
			SQL: `
                CREATE TABLE IF NOT EXISTS works (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
                    child_id TEXT NOT NULL,
                    notes TEXT,
                    is_approved BOOLEAN NOT NULL DEFAULT false,
                    approved_at TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "familykit-004",
			Description: "Create payments table",
			SQL: `
                CREATE TABLE IF NOT EXISTS payments (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
                    user_id TEXT NOT NULL,
                    child_id TEXT NOT NULL,
                    amount BIGINT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "familykit-005",
			Description: "Create profiles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS profiles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    user_id TEXT NOT NULL UNIQUE,
                    family_id UUID REFERENCES families(id) ON DELETE SET NULL,
                    display_name TEXT NOT NULL,
                    role TEXT NOT NULL,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "familykit-006",
			Description: "Create owner lookup indexes",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_families_owner ON families(owner_id);
                CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
                CREATE INDEX IF NOT EXISTS idx_works_child ON works(child_id);
                CREATE INDEX IF NOT EXISTS idx_payments_child ON payments(child_id)`,
		},
	}
}
