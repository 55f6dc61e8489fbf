package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/memorial"
	bt "github.com/fwojciec/memorial/bubbletea"
	"github.com/fwojciec/memorial/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(newStore(t), nopSend, memorial.DefaultTheme())
	t.Cleanup(m.Close)

	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Layout(t *testing.T) {
	t.Parallel()

	t.Run("sidebar takes a quarter of a wide terminal", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		assert.Equal(t, 75, m.Viewport.Width)
		assert.Equal(t, 26, m.Viewport.Height) // 30 - 1 - 1 - 2
		assert.Contains(t, m.View(), "Imperial Archives")
	})

	t.Run("sidebar width is capped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 30, bt.SidebarWidth(200))
		assert.Equal(t, 20, bt.SidebarWidth(80))
		assert.Equal(t, 0, bt.SidebarWidth(59))
	})

	t.Run("narrow terminal hides the sidebar", func(t *testing.T) {
		t.Parallel()
		m := initModelWithSize(t, newStore(t), nopSend, 50, 20)
		assert.Equal(t, 50, m.Viewport.Width)
		assert.NotContains(t, m.View(), "Imperial Archives")
	})

	t.Run("resize updates viewport dimensions", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 90, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("empty session shows the splash", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		content := bt.RenderContent(m)
		assert.Contains(t, content, "The Court is in Session")
		assert.Contains(t, content, "Awaiting Your Majesty's Vermilion Brush...")
	})

	t.Run("input shows the edict placeholder", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		assert.Equal(t, "Draft your imperial edict here...", m.Input.Placeholder)
	})
}

func TestModel_StoreChanges(t *testing.T) {
	t.Parallel()

	t.Run("renders messages of the current session", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)

		store.AppendMessage("s1", memorial.Message{ID: "m1", Role: memorial.RoleUser, Content: "北境可安？"})
		store.AppendMessage("s1", memorial.Message{ID: "m2", Role: memorial.RoleModel, Content: "北境**安然无恙**"})
		m = updateModel(t, m, bt.StoreChangedMsg{})

		content := bt.RenderContent(m)
		assert.Contains(t, content, bt.EdictLabel)
		assert.Contains(t, content, "北境可安？")
		assert.Contains(t, content, bt.MemorialLabel)
		assert.Contains(t, content, "安然无恙")
		assert.NotContains(t, content, "The Court is in Session")
	})

	t.Run("streaming reply shows the wet ink marker until final", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)

		store.AppendMessage("s1", memorial.Message{ID: "m1", Role: memorial.RoleModel, Streaming: true})
		store.UpdateStreaming("m1", func(msg *memorial.Message) { msg.Content = "臣启" })
		m = updateModel(t, m, bt.StoreChangedMsg{})
		assert.Contains(t, bt.RenderContent(m), "臣启")
		assert.Contains(t, bt.RenderContent(m), bt.StreamingMarker)

		store.UpdateStreaming("m1", func(msg *memorial.Message) {
			msg.Content = "臣启奏"
			msg.Streaming = false
		})
		m = updateModel(t, m, bt.StoreChangedMsg{})
		assert.Contains(t, bt.RenderContent(m), "臣启奏")
		assert.NotContains(t, bt.RenderContent(m), bt.StreamingMarker)
	})

	t.Run("fallback reply is rendered", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModelWithSize(t, store, nopSend, 300, 30)

		store.AppendMessage("s1", memorial.Message{ID: "m1", Role: memorial.RoleModel, Content: memorial.FallbackReply})
		m = updateModel(t, m, bt.StoreChangedMsg{})
		assert.Contains(t, bt.RenderContent(m), "The Grand Councilor is silent.")
	})

	t.Run("empty final reply is not rendered", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)

		store.AppendMessage("s1", memorial.Message{ID: "m1", Role: memorial.RoleModel})
		m = updateModel(t, m, bt.StoreChangedMsg{})
		assert.NotContains(t, bt.RenderContent(m), bt.MemorialLabel)
	})

	t.Run("sidebar marks the current session", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)

		store.SetTitle("s1", "边疆军务")
		store.Create()
		m = updateModel(t, m, bt.StoreChangedMsg{})

		view := m.View()
		assert.Contains(t, view, "▸ "+memorial.PlaceholderTitle)
		assert.Contains(t, view, "边疆军务")
		assert.NotContains(t, view, "▸ 边疆军务")
	})

	t.Run("store change is delivered through the subscription", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)

		store.Create()
		// Init batches the listener with the cursor blink; run the listener
		// directly.
		msg := bt.ListenForChanges(m)()
		assert.Equal(t, bt.StoreChangedMsg{}, msg)
	})

	t.Run("switching sessions shows the other transcript", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		store.AppendMessage("s1", memorial.Message{ID: "m1", Role: memorial.RoleUser, Content: "first audience"})
		store.Create()
		m := initModel(t, store, nopSend)
		assert.Contains(t, bt.RenderContent(m), "The Court is in Session")

		store.Select("s1")
		m = updateModel(t, m, bt.StoreChangedMsg{})
		assert.Contains(t, bt.RenderContent(m), "first audience")
	})
}

func TestModel_Keys(t *testing.T) {
	t.Parallel()

	t.Run("ctrl+c quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("enter with blank input does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m.Input.SetValue("   ")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.False(t, updated.(bt.Model).Running())
	})

	t.Run("enter submits trimmed input", func(t *testing.T) {
		t.Parallel()
		var got string
		send := func(_ context.Context, text string) error {
			got = text
			return nil
		}
		m := initModel(t, newStore(t), send)
		m.Input.SetValue("  朕意已决  ")

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)
		assert.True(t, model.Running())
		assert.Empty(t, model.Input.Value())
		assert.Contains(t, model.View(), "composing a memorial")

		require.NotNil(t, cmd)
		assert.Equal(t, bt.SendDoneMsg{}, cmd())
		assert.Equal(t, "朕意已决", got)
	})

	t.Run("enter while running is ignored", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m.Input.SetValue("first")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		m.Input.SetValue("second")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, "second", updated.(bt.Model).Input.Value())
	})

	t.Run("send done clears running", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m.Input.SetValue("hi")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m = updateModel(t, m, bt.SendDoneMsg{})
		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
	})

	t.Run("send error is shown in the status line", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m = updateModel(t, m, bt.SendDoneMsg{Err: memorial.ErrBusy})
		assert.ErrorIs(t, m.Err(), memorial.ErrBusy)
		assert.Contains(t, m.View(), "Error: "+memorial.ErrBusy.Error())
	})

	t.Run("ctrl+n creates a session", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)
		updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})

		c := store.Snapshot()
		require.Len(t, c.Sessions, 2)
		assert.Equal(t, "s2", c.CurrentID)
	})

	t.Run("ctrl+x dismisses the current session", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		store.Create()
		m := initModel(t, store, nopSend)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
		require.NotNil(t, cmd)
		assert.Equal(t, bt.DeleteDoneMsg{}, cmd())

		c := store.Snapshot()
		require.Len(t, c.Sessions, 1)
		assert.Equal(t, "s1", c.CurrentID)
	})

	t.Run("ctrl+x on the last session leaves a fresh one", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		m := initModel(t, store, nopSend)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
		require.NotNil(t, cmd)
		cmd()

		c := store.Snapshot()
		require.Len(t, c.Sessions, 1)
		assert.Equal(t, "s2", c.CurrentID)
	})

	t.Run("delete error is shown", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m = updateModel(t, m, bt.DeleteDoneMsg{Err: errors.New("disk full")})
		assert.Contains(t, m.View(), "disk full")
	})

	t.Run("ctrl+up and ctrl+down walk the session list", func(t *testing.T) {
		t.Parallel()
		store := newStore(t)
		store.Create()
		store.Create() // sessions: s3, s2, s1
		m := initModel(t, store, nopSend)

		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlDown})
		assert.Equal(t, "s2", store.Snapshot().CurrentID)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlDown})
		assert.Equal(t, "s1", store.Snapshot().CurrentID)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlDown})
		assert.Equal(t, "s1", store.Snapshot().CurrentID)

		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlUp})
		assert.Equal(t, "s2", store.Snapshot().CurrentID)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlUp})
		updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlUp})
		assert.Equal(t, "s3", store.Snapshot().CurrentID)
	})

	t.Run("typing while idle edits the input", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, newStore(t), nopSend)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("准奏")})
		assert.Equal(t, "准奏", m.Input.Value())
	})
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full audience with a streamed memorial", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		provider := &mock.Provider{
			StreamFn: func(context.Context, memorial.Request) (memorial.Stream, error) {
				return mock.Fragments(nil, "Long live ", "the Emperor!"), nil
			},
		}
		titler := &mock.Titler{
			TitleFn: func(context.Context, string) string { return "万寿无疆" },
		}
		ctrl := memorial.NewController(store, provider, titler)
		m := bt.New(store, ctrl.Send, memorial.DefaultTheme())
		t.Cleanup(m.Close)

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Long live the Emperor!")) &&
				bytes.Contains(out, []byte("enter send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())

		ctrl.Wait()
		sess, ok := store.Current()
		require.True(t, ok)
		assert.Equal(t, "万寿无疆", sess.Title)
		require.Len(t, sess.Messages, 2)
		assert.Equal(t, "hi", sess.Messages[0].Content)
		assert.Equal(t, "Long live the Emperor!", sess.Messages[1].Content)
	})

	t.Run("existing audience renders on init", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		store.AppendMessage("s1", memorial.Message{ID: "m1", Role: memorial.RoleUser, Content: "hello there"})
		store.AppendMessage("s1", memorial.Message{ID: "m2", Role: memorial.RoleModel, Content: "Your servant hears."})
		m := bt.New(store, nopSend, memorial.DefaultTheme())
		t.Cleanup(m.Close)

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("hello there")) &&
				bytes.Contains(out, []byte("Your servant hears."))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})

	t.Run("a blocked send keeps later edicts out", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		release := make(chan struct{})
		var mu sync.Mutex
		var sent []string
		send := func(_ context.Context, text string) error {
			mu.Lock()
			sent = append(sent, text)
			mu.Unlock()
			<-release
			return nil
		}
		m := bt.New(store, send, memorial.DefaultTheme())
		t.Cleanup(m.Close)

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
		tm.Type("one")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("composing a memorial"))
		}, teatest.WithDuration(5*time.Second))

		tm.Type("two")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		close(release)
		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("enter send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"one"}, sent)
	})
}
