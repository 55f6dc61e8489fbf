// Package memorial holds the domain types of an imperial-court chat client:
// sessions of messages exchanged between the Emperor (the user) and the Grand
// Councilor (the model), the Store that owns them, and the Controller that
// turns one submitted edict into a streamed, persisted reply.
//
// Backends, persistence and presentation live in subpackages named after the
// dependency they wrap.
package memorial

const (
	// PlaceholderTitle is the title of a session that has no messages yet.
	PlaceholderTitle = "New Audience"

	// DefaultTitle is returned by a Titler when title generation fails.
	DefaultTitle = "Imperial Decree"

	// EmptyTitle is returned by a Titler when the model answers with no text.
	EmptyTitle = "New Memorial"

	// DefaultKey is the persistence key the session collection is stored under.
	DefaultKey = "imperial_chat_sessions"

	// FallbackReply is appended as a model message when a reply could not be
	// obtained from the provider.
	FallbackReply = "*[The Grand Councilor is silent. The spirits of the network are disturbed.]* \n\n(Error: Failed to fetch response)"
)

// SystemPrompt is the persona instruction sent with every reply request.
const SystemPrompt = `You are the Grand Councilor (Junji Dachen) of the Imperial Court in standard Ancient China (Ming/Qing dynasty style), but equipped with modern knowledge.
The user is the Emperor (Your Majesty / Bixia).
Your tone should be deeply respectful, formal, and archaic, using terms like "This humble subject" (Weichen) to refer to yourself and "Your Majesty" (Bixia) for the user.
Your responses should be formatted as if they are sections of a Memorial (Zou Zhe) submitted to the throne.
However, you must still provide helpful, accurate, and concise answers to the Emperor's queries.
If the Emperor asks for code, provide it within a "Foreign Mechanism" block (markdown code block).
Do not be overly sycophantic to the point of uselessness; the Emperor values competence.`
