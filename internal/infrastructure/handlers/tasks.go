package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// ModuleTasks is the target module served by TaskBoard.
const ModuleTasks = "tasks"

// Task is one board item.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Assignee  string     `json:"assignee,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

// TaskBoard is an in-memory task list.
type TaskBoard struct {
	mu    sync.Mutex
	items []Task
	seq   int
	clock Clock
}

// NewTaskBoard builds an empty board.
func NewTaskBoard(clock Clock) *TaskBoard {
	return &TaskBoard{clock: clockOrNow(clock)}
}

// Handle implements ports.Handler.
func (b *TaskBoard) Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.HandlerResponse{}, err
	}
	switch req.ActionType {
	case "task.create":
		return b.create(req)
	case "task.list":
		return b.list(), nil
	case "task.complete":
		return b.complete(req.Parameters["title"])
	default:
		return domain.HandlerResponse{}, unsupportedAction(ModuleTasks, req.ActionType)
	}
}

func (b *TaskBoard) create(req domain.HandlerRequest) (domain.HandlerResponse, error) {
	title := strings.TrimSpace(req.Parameters["title"])
	if title == "" {
		return domain.HandlerResponse{}, domain.NewHandlerError(ModuleTasks, "task title is empty")
	}
	assignee := req.Parameters["assignee"]

	b.mu.Lock()
	b.seq++
	task := Task{
		ID:        fmt.Sprintf("T-%04d", b.seq),
		Title:     title,
		Assignee:  assignee,
		CreatedAt: b.clock(),
	}
	b.items = append(b.items, task)
	b.mu.Unlock()

	msg := fmt.Sprintf("Task %s created: %s", task.ID, task.Title)
	if assignee != "" {
		msg += " (assigned to " + assignee + ")"
	}
	return domain.HandlerResponse{
		Message:   msg,
		Data:      map[string]any{"task": task},
		NextSteps: []string{"list tasks"},
	}, nil
}

func (b *TaskBoard) list() domain.HandlerResponse {
	b.mu.Lock()
	items := append([]Task(nil), b.items...)
	b.mu.Unlock()

	open := 0
	for _, task := range items {
		if !task.Done {
			open++
		}
	}
	return domain.HandlerResponse{
		Message: fmt.Sprintf("%d tasks, %d open", len(items), open),
		Data:    map[string]any{"tasks": items},
	}
}

func (b *TaskBoard) complete(title string) (domain.HandlerResponse, error) {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return domain.HandlerResponse{}, domain.NewHandlerError(ModuleTasks, "which task should be completed?")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		task := &b.items[i]
		if task.Done {
			continue
		}
		if strings.EqualFold(task.ID, needle) || strings.Contains(strings.ToLower(task.Title), needle) {
			now := b.clock()
			task.Done = true
			task.DoneAt = &now
			return domain.HandlerResponse{
				Message: fmt.Sprintf("Task %s completed", task.ID),
				Data:    map[string]any{"task": *task},
			}, nil
		}
	}
	return domain.HandlerResponse{}, domain.NewHandlerError(ModuleTasks, fmt.Sprintf("no open task matches %q", title))
}

// Counts returns total and open task counts.
func (b *TaskBoard) Counts() (total, open int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, task := range b.items {
		if !task.Done {
			open++
		}
	}
	return len(b.items), open
}

var _ ports.Handler = (*TaskBoard)(nil)
