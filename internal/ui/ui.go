// Package ui implements a command-line user interface using [tea], showing
// the progress of a transfer next to the log output.
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/fdglue/internal/transfer"
)

type progressProvider interface {
	Progress() transfer.Progress
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	progressHandler progressProvider
	program         *tea.Program

	LogWriter *TeaLogWriter

	Initialized atomic.Bool
	Failed      atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler] showing the
// progress of progressHandler under the given title.
func NewHandler(ctx context.Context, cancel context.CancelFunc, progressHandler progressProvider, title string) *Handler {
	handler := &Handler{
		progressHandler: progressHandler,
	}

	model := NewTeaModel(handler, title, cancel)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]) and
// blocks until it exits.
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}

// Quit asks a running user interface to exit.
func (uiHandler *Handler) Quit() {
	uiHandler.program.Quit()
}
