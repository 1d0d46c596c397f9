package engine

import "strings"

// inputDelimiter joins the cumulative navigation path on the wire.
const inputDelimiter = "*"

// splitInput turns the cumulative navigation string into its ordered token
// sequence. Empty input (no navigation yet) yields no tokens.
func splitInput(text string) []string {
	if text == "" {
		return nil
	}
	tokens := strings.Split(text, inputDelimiter)
	if len(tokens) == 1 && tokens[0] == "" {
		return nil
	}
	return tokens
}
