package helpers

import (
	"context"
	"sync"

	"github.com/doeshing/panel-go/internal/app"
)

// ContainerHandle builds the application container on first use, after
// cobra has parsed the persistent flags that select it.
type ContainerHandle struct {
	Options app.Options

	mu        sync.Mutex
	container *app.Container
}

// Get returns the container, building it if needed.
func (h *ContainerHandle) Get(ctx context.Context) (*app.Container, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.container != nil {
		return h.container, nil
	}
	container, err := app.BuildContainer(ctx, h.Options)
	if err != nil {
		return nil, err
	}
	h.container = container
	return container, nil
}

// Set installs a prebuilt container.
func (h *ContainerHandle) Set(container *app.Container) {
	h.mu.Lock()
	h.container = container
	h.mu.Unlock()
}

// Close releases the container if one was built.
func (h *ContainerHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.container == nil {
		return nil
	}
	err := h.container.Close()
	h.container = nil
	return err
}
