package gemini

// Exported for testing.
var (
	NewClient   = newClient
	BuildConfig = buildConfig
)
