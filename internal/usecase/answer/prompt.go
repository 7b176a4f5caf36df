package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/estaterag/internal/domain"
	"github.com/kailas-cloud/estaterag/internal/domain/similarity"
)

const systemPrompt = "You are an assistant that recommends real estate listings based on a buyer's " +
	"natural-language requirements. Use only the candidate listings provided. " +
	"Produce a short ranked recommendation with reasoning and actionable next steps."

// BuildPrompt renders the grounded prompt for query and hits. Output depends
// only on its inputs; every hit's full text is included in rank order.
func BuildPrompt(query string, hits []similarity.Hit) domain.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n\n", query)
	b.WriteString("Retrieved candidate listings (best match first):\n")
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Listing ID %s (score=%.4f): %s\n", h.Listing.ID(), h.Score, h.Listing.FullText())
	}
	fmt.Fprintf(&b, "\nTask: Rank the %d listings above for this buyer, explain why each matches "+
		"or misses the query, and list missing information or next steps.", len(hits))

	return domain.Prompt{System: systemPrompt, User: b.String()}
}
