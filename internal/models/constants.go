package models

const (
	TokenSplitRegex    = `\W+`
	SentenceSplitRegex = `[.!?]+`
	ResponsePrefix     = "Based on our information"
	SourcesSeparator   = ", "
	SentenceSeparator  = ". "
)

// reference behaviour of the chat widget answer routine
const (
	DefaultMaxCandidates        = 10
	DefaultTopDocuments         = 3
	DefaultSentencesPerDocument = 2
	DefaultMaxSentences         = 3
	DefaultMinSentenceLength    = 20
	DefaultMinMatchWordLength   = 4
	DefaultMinKeywordLength     = 3
	DefaultMaxSources           = 2
	DefaultChunkSize            = 1000 // chars
	DefaultChunkOverlap         = 200  // chars
)

var (
	DefaultStopWords = []string{"the", "and", "but", "for", "with"}

	DefaultGreetingWords = []string{"hello", "hi", "hey"}

	DefaultGreetings = []string{
		"Hello! How can I help you today?",
		"Hi there! What would you like to know?",
		"Hey! Ask me anything about our services and I'll do my best to help.",
	}

	DefaultUnknowns = []string{
		"I'm sorry, I don't have enough information to answer that. Please contact our support team for more help.",
		"I couldn't find anything about that in our knowledge base. Could you try rephrasing your question?",
		"I don't have information on that yet. Please reach out to our team directly and we'll be happy to help.",
	}
)
