package llm

import (
	"strings"
)

const (
	// maxDocumentChars caps the document text placed in an extraction prompt.
	maxDocumentChars = 24000
	// maxChatContextChars caps the document excerpt sent with a chat question.
	maxChatContextChars = 2000
)

// BuildExtractionSystemPrompt is the fixed instruction block for extraction.
func BuildExtractionSystemPrompt() string {
	parts := []string{
		"You extract structured data from Argentine invoices (facturas electrónicas AFIP).",
		"Return ONLY one JSON object, no markdown, no commentary.",
		"Never invent values: if a field is not in the text, use null or omit it.",
		"Dates must be ISO-8601 (YYYY-MM-DD). Amounts must be JSON numbers (e.g. 9136.40), never strings.",
		"invoiceType is the letter (A, B, C...). invoiceNumber keeps the point-of-sale prefix (e.g. 1305-76453547); pointSale is that prefix.",
		"supplier is the issuer; client is the billed party.",
		"currency is a 3-letter ISO 4217 code.",
		"iva is the VAT total; put perceptions and other taxes in otherTaxes [{name, amount}].",
		"items: description, quantity, unit_price, total and discount when the document lists lines.",
		"confidence maps field keys (supplier_cuit, supplier_name, invoice_number, invoice_type, cae, document_date, due_date, amount, iva, amount_grav, currency...) to 0.0-1.0.",
		"reasoning maps the same keys to one short sentence explaining where the value was found.",
	}
	return strings.Join(parts, "\n")
}

// BuildExtractionUserPrompt wraps the document text.
func BuildExtractionUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Output shape:\n")
	b.WriteString(exampleShape)
	b.WriteString("\n\nInvoice text:\n")
	b.WriteString(Truncate(text, maxDocumentChars))
	return b.String()
}

// BuildChatSystemPrompt frames follow-up questions about one record.
func BuildChatSystemPrompt() string {
	return strings.Join([]string{
		"You are an assistant that explains data extracted from an Argentine invoice.",
		"Answer in the language of the question, briefly and precisely.",
		"Explain how values were detected and how confident the extraction is; confidence values above 1 are percentages.",
		"If something was not detected, say so instead of guessing.",
	}, "\n")
}

// BuildChatUserPrompt packs the record, a document excerpt and the question.
func BuildChatUserPrompt(recordJSON, text, question string) string {
	var b strings.Builder
	b.WriteString("Extracted data:\n")
	b.WriteString(recordJSON)
	b.WriteString("\n\nDocument excerpt:\n")
	b.WriteString(Truncate(text, maxChatContextChars))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	return b.String()
}

const exampleShape = `{
  "supplier": {"cuit": "30-66328849-7", "name": "AMX ARGENTINA S.A.", "address": null},
  "client": {"name": null, "cuit": null, "address": null, "code": null},
  "currency": "ARS",
  "invoiceType": "B",
  "invoiceNumber": "1305-76453547",
  "pointSale": "1305",
  "cae": "73347774383997",
  "documentDate": "2023-08-22",
  "dueDate": "2023-09-14",
  "billingPeriod": {"from": "2023-07-23", "to": "2023-08-22"},
  "amount": 9136.40,
  "iva": 205.40,
  "amountGrav": 8040.42,
  "amountNoGrav": 0,
  "amountExen": 0,
  "taxCode": null,
  "otherTaxes": [{"name": "Perc. IIBB", "amount": 890.55}],
  "items": [{"description": "Plan 1GB", "quantity": 3, "unit_price": 3050.00, "total": 9150.00, "discount": -500.00}],
  "confidence": {"supplier_cuit": 0.98, "amount": 0.99},
  "reasoning": {"amount": "Total a Pagar at the bottom of the document"}
}`
