package familykit

import (
	"time"

	"github.com/uptrace/bun"
)

// Family is a household. Its owner is the parent who created it.
type Family struct {
	bun.BaseModel `bun:"table:families,alias:f"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	OwnerID   string    `bun:"owner_id,notnull"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Record implements Model.
func (f *Family) Record() Record {
	return Record{
		"id":         f.ID,
		FieldOwnerID: f.OwnerID,
		"name":       f.Name,
		"created_at": f.CreatedAt,
		"updated_at": f.UpdatedAt,
	}
}

// Task is a chore a parent publishes for the family.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	FamilyID  string    `bun:"family_id,notnull"`
	UserID    string    `bun:"user_id,notnull"`          // creator
	Title     string    `bun:"title,notnull"`
	Reward    int64     `bun:"reward,notnull,default:0"` // minor currency units
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Record implements Model.
func (t *Task) Record() Record {
	return Record{
		"id":         t.ID,
		"family_id":  t.FamilyID,
		FieldUserID:  t.UserID,
		"title":      t.Title,
		"reward":     t.Reward,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// TaskDetail holds the instructions attached to a task.
type TaskDetail struct {
	bun.BaseModel `bun:"table:task_details,alias:td"`

	ID          string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TaskID      string    `bun:"task_id,notnull"`
	UserID      string    `bun:"user_id,notnull"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Record implements Model.
func (d *TaskDetail) Record() Record {
	return Record{
		"id":          d.ID,
		"task_id":     d.TaskID,
		FieldUserID:   d.UserID,
		"description": d.Description,
		"created_at":  d.CreatedAt,
	}
}

// Work is a child's submission for a task. Approved work is frozen.
type Work struct {
	bun.BaseModel `bun:"table:works,alias:w"`

	ID         string     `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TaskID     string     `bun:"task_id,notnull"`
	ChildID    string     `bun:"child_id,notnull"`
	Notes      string     `bun:"notes"`
	IsApproved bool       `bun:"is_approved,notnull,default:false"`
	ApprovedAt *time.Time `bun:"approved_at"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}

// Record implements Model.
func (w *Work) Record() Record {
	return Record{
		"id":          w.ID,
		"task_id":     w.TaskID,
		FieldChildID:  w.ChildID,
		"notes":       w.Notes,
		"is_approved": w.IsApproved,
		"approved_at": w.ApprovedAt,
		"created_at":  w.CreatedAt,
	}
}

// Payment is an allowance payout from a parent to a child.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	FamilyID  string    `bun:"family_id,notnull"`
	UserID    string    `bun:"user_id,notnull"` // paying parent
	ChildID   string    `bun:"child_id,notnull"`
	Amount    int64     `bun:"amount,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Record implements Model.
func (p *Payment) Record() Record {
	return Record{
		"id":         p.ID,
		"family_id":  p.FamilyID,
		FieldUserID:  p.UserID,
		FieldChildID: p.ChildID,
		"amount":     p.Amount,
		"created_at": p.CreatedAt,
	}
}

// Profile is the account profile of a family member.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	ID          string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID      string    `bun:"user_id,notnull,unique"`
	FamilyID    string    `bun:"family_id"`
	DisplayName string    `bun:"display_name,notnull"`
	Role        string    `bun:"role,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Record implements Model.
func (p *Profile) Record() Record {
	return Record{
		"id":           p.ID,
		FieldUserID:    p.UserID,
		"family_id":    p.FamilyID,
		"display_name": p.DisplayName,
		"role":         p.Role,
		"updated_at":   p.UpdatedAt,
	}
}
