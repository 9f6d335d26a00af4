package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"todolist-backend/internal/domain"
)

// TodoRepository defines owner-scoped todo data operations. Every method
// takes the caller's identity; no call path exists that omits it.
type TodoRepository interface {
	Create(ctx context.Context, ownerID uuid.UUID, todo *domain.Todo) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Todo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, newestFirst bool) ([]domain.Todo, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// gormTodoRepository implements TodoRepository using GORM over Postgres
// with row-level security enabled on the todos table.
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository.
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// asCaller runs fn in a transaction with the caller's identity bound to the
// Postgres session setting the row-level security policies read. set_config
// with is_local=true scopes the binding to exactly this transaction, so a
// pooled connection never leaks an identity into the next request.
func (r *gormTodoRepository) asCaller(ctx context.Context, ownerID uuid.UUID, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SELECT set_config('app.current_user_id', ?, true)`, ownerID.String()).Error; err != nil {
			return err
		}
		return fn(tx)
	})
}

// translate maps low-level Postgres failures onto the domain taxonomy.
// 42501 is insufficient_privilege, which is how a row-level security
// violation surfaces on insert.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return domain.ErrAuthorization
	}
	return err
}

// Create inserts a new todo. The row's owner must be the bound caller or
// the insert policy rejects it outright. Postgres assigns id, created_at
// and updated_at; GORM reads them back into the struct.
func (r *gormTodoRepository) Create(ctx context.Context, ownerID uuid.UUID, todo *domain.Todo) error {
	return r.asCaller(ctx, ownerID, func(tx *gorm.DB) error {
		if err := tx.Create(todo).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

// FindByID retrieves one of the caller's todos. Rows owned by anyone else
// are invisible under the select policy, so a foreign id behaves exactly
// like a missing one.
func (r *gormTodoRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.asCaller(ctx, ownerID, func(tx *gorm.DB) error {
		result := tx.First(&todo, "id = ?", id)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return result.Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListByOwner returns the caller's todos ordered by creation time. The
// direction is a read contract chosen by the caller; newest-first is the
// default everywhere above this layer.
func (r *gormTodoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, newestFirst bool) ([]domain.Todo, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	var todos []domain.Todo
	err := r.asCaller(ctx, ownerID, func(tx *gorm.DB) error {
		return tx.Order(order).Find(&todos).Error
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Update applies a partial update and returns the row as persisted,
// including the trigger-refreshed updated_at. Zero rows affected means the
// target is absent or foreign.
func (r *gormTodoRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TodoPatch) (*domain.Todo, error) {
	values := map[string]any{}
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	if patch.Completed != nil {
		values["completed"] = *patch.Completed
	}

	var todo domain.Todo
	err := r.asCaller(ctx, ownerID, func(tx *gorm.DB) error {
		result := tx.Model(&domain.Todo{}).Where("id = ?", id).Updates(values)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.First(&todo, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete permanently removes one of the caller's todos. No soft delete.
func (r *gormTodoRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.asCaller(ctx, ownerID, func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Todo{}, "id = ?", id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
