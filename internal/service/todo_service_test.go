package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"todolist-backend/internal/domain"
)

// fakeTodoRepo emulates the store's contract in memory: server-assigned id
// and timestamps, owner scoping on every operation, updated_at refreshed on
// every update, and foreign rows indistinguishable from missing ones.
type fakeTodoRepo struct {
	rows map[uuid.UUID]domain.Todo
	now  time.Time
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{
		rows: make(map[uuid.UUID]domain.Todo),
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeTodoRepo) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeTodoRepo) Create(_ context.Context, ownerID uuid.UUID, todo *domain.Todo) error {
	if todo.OwnerID != ownerID {
		return domain.ErrAuthorization
	}
	todo.ID = uuid.New()
	todo.CreatedAt = f.tick()
	todo.UpdatedAt = todo.CreatedAt
	f.rows[todo.ID] = *todo
	return nil
}

func (f *fakeTodoRepo) FindByID(_ context.Context, ownerID, id uuid.UUID) (*domain.Todo, error) {
	row, ok := f.rows[id]
	if !ok || row.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (f *fakeTodoRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, newestFirst bool) ([]domain.Todo, error) {
	var out []domain.Todo
	for _, row := range f.rows {
		if row.OwnerID == ownerID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeTodoRepo) Update(_ context.Context, ownerID, id uuid.UUID, patch domain.TodoPatch) (*domain.Todo, error) {
	row, ok := f.rows[id]
	if !ok || row.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		row.Title = *patch.Title
	}
	if patch.Description != nil {
		row.Description = patch.Description
	}
	if patch.Completed != nil {
		row.Completed = *patch.Completed
	}
	row.UpdatedAt = f.tick()
	f.rows[id] = row
	return &row, nil
}

func (f *fakeTodoRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	row, ok := f.rows[id]
	if !ok || row.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func TestCreateTodoValidation(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	tests := []struct {
		name  string
		title string
	}{
		{name: "empty title", title: ""},
		{name: "whitespace only", title: "   \t  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{Title: tt.title})
			require.ErrorIs(t, err, domain.ErrValidation)

			// Nothing reached the store.
			todos, err := svc.ListTodos(context.Background(), owner, true)
			require.NoError(t, err)
			require.Empty(t, todos)
		})
	}
}

func TestCreateTodoRejectsForeignOwner(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	_, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{
		Title:   "Buy milk",
		OwnerID: uuid.New().String(),
	})
	require.ErrorIs(t, err, domain.ErrAuthorization)

	// Naming yourself explicitly is fine.
	resp, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{
		Title:   "Buy milk",
		OwnerID: owner.String(),
	})
	require.NoError(t, err)
	require.Equal(t, owner.String(), resp.OwnerID)
}

func TestCreateTodoReturnsServerAssignedFields(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	resp, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{Title: "  Buy milk  "})
	require.NoError(t, err)
	require.Equal(t, "Buy milk", resp.Title, "title is trimmed")
	require.False(t, resp.Completed)
	require.NotEmpty(t, resp.ID)
	require.NotEmpty(t, resp.CreatedAt)
	require.Equal(t, resp.CreatedAt, resp.UpdatedAt)
}

func TestListTodosNewestFirst(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{Title: title})
		require.NoError(t, err)
	}

	todos, err := svc.ListTodos(context.Background(), owner, true)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	require.Equal(t, "third", todos[0].Title)
	require.Equal(t, "second", todos[1].Title)
	require.Equal(t, "first", todos[2].Title)

	oldest, err := svc.ListTodos(context.Background(), owner, false)
	require.NoError(t, err)
	require.Equal(t, "first", oldest[0].Title)
}

func TestListTodosIsOwnerScoped(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.CreateTodo(context.Background(), alice, CreateTodoRequest{Title: "alice's task"})
	require.NoError(t, err)

	todos, err := svc.ListTodos(context.Background(), bob, true)
	require.NoError(t, err)
	require.Empty(t, todos)
}

func TestUpdateTodo(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	created, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{Title: "Buy milk"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	completed := true
	updated, err := svc.UpdateTodo(context.Background(), owner, id, UpdateTodoRequest{Completed: &completed})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Greater(t, updated.UpdatedAt, created.UpdatedAt, "updated_at refreshed")

	// Toggle back round-trips.
	completed = false
	reverted, err := svc.UpdateTodo(context.Background(), owner, id, UpdateTodoRequest{Completed: &completed})
	require.NoError(t, err)
	require.False(t, reverted.Completed)
	require.Greater(t, reverted.UpdatedAt, updated.UpdatedAt)
}

func TestUpdateTodoValidation(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	created, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{Title: "Buy milk"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	empty := "  "
	_, err = svc.UpdateTodo(context.Background(), owner, id, UpdateTodoRequest{Title: &empty})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateTodo(context.Background(), owner, id, UpdateTodoRequest{})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestMutationsAgainstForeignRowsAreNotFound(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	alice, bob := uuid.New(), uuid.New()

	created, err := svc.CreateTodo(context.Background(), alice, CreateTodoRequest{Title: "alice's task"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	completed := true
	_, err = svc.UpdateTodo(context.Background(), bob, id, UpdateTodoRequest{Completed: &completed})
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteTodo(context.Background(), bob, id)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetTodoByID(context.Background(), bob, id)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Alice's row is untouched by Bob's attempts.
	todo, err := svc.GetTodoByID(context.Background(), alice, id)
	require.NoError(t, err)
	require.False(t, todo.Completed)
}

func TestDeleteTodoPoisonsFutureMutations(t *testing.T) {
	svc := NewTodoService(newFakeTodoRepo())
	owner := uuid.New()

	created, err := svc.CreateTodo(context.Background(), owner, CreateTodoRequest{Title: "Buy milk"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.DeleteTodo(context.Background(), owner, id))

	todos, err := svc.ListTodos(context.Background(), owner, true)
	require.NoError(t, err)
	require.Empty(t, todos)

	completed := true
	_, err = svc.UpdateTodo(context.Background(), owner, id, UpdateTodoRequest{Completed: &completed})
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteTodo(context.Background(), owner, id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
