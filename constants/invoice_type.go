package constants

// AFIP voucher codes for the letter-coded invoice categories.
var afipInvoiceTypes = map[string]string{
	"01": "A",
	"06": "B",
	"11": "C",
}

// InvoiceTypeFromAFIPCode maps a 2-digit AFIP code to its letter. Unknown
// codes are returned unchanged.
func InvoiceTypeFromAFIPCode(code string) string {
	if letter, ok := afipInvoiceTypes[code]; ok {
		return letter
	}
	return code
}
