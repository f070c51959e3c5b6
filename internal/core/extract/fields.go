package extract

import (
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ExtractFields runs the rule catalog over text. Fields whose rule does not
// match stay absent together with their confidence and reasoning.
func ExtractFields(text string) *entity.ExtractedInvoice {
	inv := entity.NewExtractedInvoice()
	for _, r := range catalog {
		m := r.pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		reason := r.apply(inv, m[1])
		inv.Annotate(r.field, r.confidence, reason)
	}
	return inv
}
