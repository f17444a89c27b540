// Package session holds conversation history: ordered (query, answer)
// turns owned by the caller and passed into the pipeline by value.
package session

// Turn is one completed question/answer exchange.
type Turn struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// History is an ordered, append-only sequence of turns.
type History []Turn

// Truncate returns the most recent n turns in original order. n <= 0
// yields an empty history.
func (h History) Truncate(n int) History {
	if n <= 0 || len(h) == 0 {
		return nil
	}
	if n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}

// Append returns a new history with the turn added. The receiver is not
// mutated, so histories can be shared across goroutines safely.
func (h History) Append(turn Turn) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	return append(out, turn)
}
