package backend

import "fmt"

// FallbackMergeSuggestions is served when the merge-suggestion call
// fails; the pending node stays usable with a generic directive.
func FallbackMergeSuggestions() []string {
	return []string{
		"Synthesize findings from these nodes",
		"Compare and contrast key points",
		"Summarize the common theme",
	}
}

// FallbackExpandSuggestions is served when the expand-suggestion call
// fails.
func FallbackExpandSuggestions(nodeTitle string) []string {
	return []string{
		fmt.Sprintf("Explore sub-topics of '%s'", nodeTitle),
		"Find related concepts in documents",
		"Dive deeper into these specific findings",
	}
}
