package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/memorial"
	bt "github.com/fwojciec/memorial/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(memorial.DefaultTheme())

	assert.Equal(t, lipgloss.Color("1"), styles.Edict.GetForeground())
	assert.True(t, styles.Edict.GetBold())

	assert.Equal(t, lipgloss.Color("3"), styles.Memorial.GetForeground())
	assert.True(t, styles.Memorial.GetBold())

	assert.Equal(t, lipgloss.Color("1"), styles.Seal.GetForeground())
	assert.Equal(t, lipgloss.Color("9"), styles.Error.GetForeground())

	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())

	assert.Equal(t, lipgloss.Color("3"), styles.Accent.GetForeground())
	assert.True(t, styles.Accent.GetItalic())

	assert.True(t, styles.Sidebar.GetBorderRight())
	assert.False(t, styles.Sidebar.GetBorderLeft())
}

func TestNewStylesNegativeIndexYieldsNoColor(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(memorial.Theme{Edict: -1})

	assert.Equal(t, lipgloss.NoColor{}, styles.Edict.GetForeground())
}
