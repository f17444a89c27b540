// Package prompt renders the grounded question prompt sent to the
// language model.
package prompt

import "strings"

// Separator is placed between context passages in the composed prompt.
const Separator = "\n\n---\n\n"

// The policy header is fixed: the model must answer only from the given
// context and admit when it cannot, instead of fabricating.
const header = `Answer the user's question concisely and professionally, based only on the known content below.
If the answer cannot be derived from the known content, reply "The question cannot be answered from the provided information." Do not add fabricated details to the answer.

Known content:
`

const questionHeader = "\n\nQuestion:\n"

// Compose renders the prompt from the retrieved context passages (in
// ranked order) and the raw question. The output is deterministic.
func Compose(contexts []string, question string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, c := range contexts {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(c)
	}
	sb.WriteString(questionHeader)
	sb.WriteString(question)
	return sb.String()
}
