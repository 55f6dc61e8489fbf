package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// SidebarWidth exports sidebarWidth for testing.
var SidebarWidth = sidebarWidth

// ListenForChanges returns the model's store listener command.
func ListenForChanges(m Model) func() any {
	cmd := listenForChanges(m.changes)
	return func() any { return cmd() }
}

// QuitOnDone exports quitOnDone for testing.
var QuitOnDone = quitOnDone

// Sanitize exports sanitize for testing.
var Sanitize = sanitize
