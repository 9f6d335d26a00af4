package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"todolist-backend/internal/domain"
	"todolist-backend/internal/repository"
)

// CreateTodoRequest holds the data needed to create a new todo. OwnerID is
// optional; if the client sends one it must name the caller, anything else
// is an authorization failure rather than a silent rewrite.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	OwnerID     string  `json:"owner_id,omitempty"`
}

// UpdateTodoRequest holds a partial update. Pointers distinguish a field
// being omitted from being set to its zero value (e.g. Completed=false).
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoResponse is the standard representation of a todo returned by the
// service. Timestamps are server-assigned and formatted RFC3339.
type TodoResponse struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// TodoService defines the owner-scoped operations for managing todos.
// Every method takes the authenticated caller's identity; the handlers
// derive it from the access token, never from the request body.
type TodoService interface {
	CreateTodo(ctx context.Context, ownerID uuid.UUID, req CreateTodoRequest) (*TodoResponse, error)
	GetTodoByID(ctx context.Context, ownerID, id uuid.UUID) (*TodoResponse, error)
	ListTodos(ctx context.Context, ownerID uuid.UUID, newestFirst bool) ([]TodoResponse, error)
	UpdateTodo(ctx context.Context, ownerID, id uuid.UUID, req UpdateTodoRequest) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, ownerID, id uuid.UUID) error
}

type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a new TodoService backed by the given repository.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

// CreateTodo validates the request and persists a new todo for the caller.
// The title is trimmed and must be non-empty; nothing reaches the store
// otherwise.
func (s *todoService) CreateTodo(ctx context.Context, ownerID uuid.UUID, req CreateTodoRequest) (*TodoResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if req.OwnerID != "" && req.OwnerID != ownerID.String() {
		return nil, fmt.Errorf("%w: cannot create todos for another user", domain.ErrAuthorization)
	}

	newTodo := &domain.Todo{
		OwnerID:     ownerID,
		Title:       title,
		Description: req.Description,
		Completed:   false,
	}

	if err := s.repo.Create(ctx, ownerID, newTodo); err != nil {
		log.Printf("Error creating todo in repository: %v", err)
		return nil, err
	}

	return toResponse(newTodo), nil
}

// GetTodoByID retrieves a single todo owned by the caller.
func (s *todoService) GetTodoByID(ctx context.Context, ownerID, id uuid.UUID) (*TodoResponse, error) {
	todo, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(todo), nil
}

// ListTodos retrieves the caller's todos ordered by creation time.
func (s *todoService) ListTodos(ctx context.Context, ownerID uuid.UUID, newestFirst bool) ([]TodoResponse, error) {
	todos, err := s.repo.ListByOwner(ctx, ownerID, newestFirst)
	if err != nil {
		log.Printf("Error fetching todos from repository: %v", err)
		return nil, err
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *toResponse(&todos[i]))
	}
	return responses, nil
}

// UpdateTodo applies a partial update to one of the caller's todos and
// returns the row as persisted, with the server-refreshed updated_at.
func (s *todoService) UpdateTodo(ctx context.Context, ownerID, id uuid.UUID, req UpdateTodoRequest) (*TodoResponse, error) {
	patch := domain.TodoPatch{
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		patch.Title = &title
	}
	if patch.Title == nil && patch.Description == nil && patch.Completed == nil {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	todo, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, err
	}
	return toResponse(todo), nil
}

// DeleteTodo permanently removes one of the caller's todos.
func (s *todoService) DeleteTodo(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func toResponse(todo *domain.Todo) *TodoResponse {
	return &TodoResponse{
		ID:          todo.ID.String(),
		OwnerID:     todo.OwnerID.String(),
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   todo.UpdatedAt.Format(time.RFC3339Nano),
	}
}
