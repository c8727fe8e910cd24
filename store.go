package familykit

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// Model is a bun model that can present itself as a Record.
type Model interface {
	Record() Record
}

// TableRepository is a ResourceRepository reading one bun model table by
// primary key.
type TableRepository struct {
	db       bun.IDB
	newModel func() Model
	op       string
}

// NewTableRepository creates a repository over the table of the model
// returned by newModel. newModel must return a fresh pointer on every call.
//
// Example:
//
//	repo := familykit.NewTableRepository(db.Bun(), func() familykit.Model { return new(familykit.Task) })
func NewTableRepository(db bun.IDB, newModel func() Model) *TableRepository {
	return &TableRepository{db: db, newModel: newModel, op: "FindResource"}
}

// FindByID implements ResourceRepository. A missing row yields (nil, nil).
func (r *TableRepository) FindByID(ctx context.Context, id string) (Record, error) {
	m := r.newModel()
	err := dbkit.WithErr1(r.db.NewSelect().Model(m).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx), r.op).Err()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m.Record(), nil
}

// TableRepositories returns a repository for every built-in resource type.
func TableRepositories(db bun.IDB) map[ResourceType]*TableRepository {
	return map[ResourceType]*TableRepository{
		ResourceFamily:     newTableRepository(db, "FindFamily", func() Model { return new(Family) }),
		ResourceTask:       newTableRepository(db, "FindTask", func() Model { return new(Task) }),
		ResourceTaskDetail: newTableRepository(db, "FindTaskDetail", func() Model { return new(TaskDetail) }),
		ResourceWork:       newTableRepository(db, "FindWork", func() Model { return new(Work) }),
		ResourcePayment:    newTableRepository(db, "FindPayment", func() Model { return new(Payment) }),
		ResourceProfile:    newTableRepository(db, "FindProfile", func() Model { return new(Profile) }),
	}
}

// RegisterTableRepositories registers a TableRepository for every built-in
// resource type on guard.
func RegisterTableRepositories(guard *Guard, db bun.IDB) {
	for rt, repo := range TableRepositories(db) {
		guard.RegisterRepository(rt, repo)
	}
}

func newTableRepository(db bun.IDB, op string, newModel func() Model) *TableRepository {
	r := NewTableRepository(db, newModel)
	r.op = op
	return r
}
