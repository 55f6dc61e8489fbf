// Package bubbletea provides the Bubble Tea terminal UI for the imperial
// court: a sidebar of archived audiences, the transcript of the current one
// and an input line for drafting edicts.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// SendFunc submits an edict and blocks until the reply is final.
type SendFunc func(ctx context.Context, text string) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled, the program quits. opts are applied after the
// default alt-screen option.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	defer m.Close()
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	stop := quitOnDone(ctx, p.Quit)
	defer stop()
	_, err := p.Run()
	return err
}

// quitOnDone calls quit once ctx is done. The returned stop ends the watch
// and returns after the watching goroutine has exited.
func quitOnDone(ctx context.Context, quit func()) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			quit()
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

// StoreChangedMsg signals that the session store holds a new collection.
// Several changes may be coalesced into one message.
type StoreChangedMsg struct{}

// SendDoneMsg signals that a submitted edict has been answered.
type SendDoneMsg struct {
	Err error
}

// DeleteDoneMsg signals that a session has been dismissed.
type DeleteDoneMsg struct {
	Err error
}
