package bubbletea

// MessageBlock is a renderable element in the transcript. View takes a width
// parameter so the root model controls layout and blocks are testable in
// isolation.
type MessageBlock interface {
	View(width int) string
}

// Labels heading each side of the correspondence.
const (
	EdictLabel      = "圣上 · Imperial Edict"
	MemorialLabel   = "臣 · Memorial to the Throne"
	StreamingMarker = "（墨迹未干...）"
)
