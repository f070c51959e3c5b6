package entity

import (
	"github.com/shopspring/decimal"
)

// Field names a populated slot of an ExtractedInvoice. These are the keys
// of the Confidence and Reasoning maps.
type Field string

const (
	FieldSupplierCUIT    Field = "supplier_cuit"
	FieldSupplierName    Field = "supplier_name"
	FieldSupplierAddress Field = "supplier_address"
	FieldClient          Field = "client"
	FieldCurrency        Field = "currency"
	FieldInvoiceType     Field = "invoice_type"
	FieldInvoiceNumber   Field = "invoice_number"
	FieldPointSale       Field = "point_sale"
	FieldDocumentDate    Field = "document_date"
	FieldDueDate         Field = "due_date"
	FieldAmount          Field = "amount"
	FieldIVA             Field = "iva"
	FieldAmountGrav      Field = "amount_grav"
	FieldAmountNoGrav    Field = "amount_no_grav"
	FieldAmountExen      Field = "amount_exen"
	FieldCAE             Field = "cae"
	FieldTaxCode         Field = "tax_code"
	FieldBillingPeriod   Field = "billing_period"
	FieldOtherTaxes      Field = "other_taxes"
	FieldItems           Field = "items"
)

// Supplier identifies the issuing party.
type Supplier struct {
	CUIT    *string `json:"cuit"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// Client identifies the billed party.
type Client struct {
	Name    *string `json:"name"`
	CUIT    *string `json:"cuit"`
	Address *string `json:"address"`
	Code    *string `json:"code"`
}

// Empty reports whether no client attribute is set.
func (c *Client) Empty() bool {
	return c == nil || (c.Name == nil && c.CUIT == nil && c.Address == nil && c.Code == nil)
}

// LineItem is one row of the invoice detail table.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Total       *decimal.Decimal `json:"total"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
}

// Period is a billing window, both ends as ISO dates.
type Period struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// OtherTax is a tax line that is not VAT (perceptions, internal taxes...).
type OtherTax struct {
	Name   string           `json:"name"`
	Amount *decimal.Decimal `json:"amount"`
}

// ExtractedInvoice is the canonical extraction record. Nil pointers mean
// "not found"; a zero value means "found, and it was zero".
type ExtractedInvoice struct {
	Supplier       Supplier         `json:"supplier"`
	Client         *Client          `json:"client,omitempty"`
	Currency       string           `json:"currency"`
	CurrencySymbol string           `json:"currencySymbol"`
	InvoiceType    *string          `json:"invoiceType"`
	InvoiceNumber  *string          `json:"invoiceNumber"`
	PointSale      *string          `json:"pointSale"`
	DocumentDate   *string          `json:"documentDate"`
	DueDate        *string          `json:"dueDate"`
	Amount         *decimal.Decimal `json:"amount"`
	IVA            *decimal.Decimal `json:"iva"`
	AmountGrav     *decimal.Decimal `json:"amountGrav"`
	AmountNoGrav   *decimal.Decimal `json:"amountNoGrav"`
	AmountExen     *decimal.Decimal `json:"amountExen"`
	CAE            *string          `json:"cae"`
	TaxCode        *string          `json:"taxCode"`
	BillingPeriod  *Period          `json:"billingPeriod,omitempty"`
	OtherTaxes     []OtherTax       `json:"otherTaxes,omitempty"`
	Items          []LineItem       `json:"items"`

	Confidence map[Field]float64 `json:"confidence"`
	Reasoning  map[Field]string  `json:"reasoning"`
}

// NewExtractedInvoice returns an empty record with its maps allocated.
func NewExtractedInvoice() *ExtractedInvoice {
	return &ExtractedInvoice{
		Items:      []LineItem{},
		Confidence: map[Field]float64{},
		Reasoning:  map[Field]string{},
	}
}

// Annotate records confidence and reasoning for a populated field.
func (inv *ExtractedInvoice) Annotate(f Field, confidence float64, reason string) {
	if inv.Confidence == nil {
		inv.Confidence = map[Field]float64{}
	}
	if inv.Reasoning == nil {
		inv.Reasoning = map[Field]string{}
	}
	inv.Confidence[f] = confidence
	if reason != "" {
		inv.Reasoning[f] = reason
	}
}

// Populated reports whether the value behind f is set.
func (inv *ExtractedInvoice) Populated(f Field) bool {
	switch f {
	case FieldSupplierCUIT:
		return inv.Supplier.CUIT != nil
	case FieldSupplierName:
		return inv.Supplier.Name != nil
	case FieldSupplierAddress:
		return inv.Supplier.Address != nil
	case FieldClient:
		return !inv.Client.Empty()
	case FieldCurrency:
		return inv.Currency != ""
	case FieldInvoiceType:
		return inv.InvoiceType != nil
	case FieldInvoiceNumber:
		return inv.InvoiceNumber != nil
	case FieldPointSale:
		return inv.PointSale != nil
	case FieldDocumentDate:
		return inv.DocumentDate != nil
	case FieldDueDate:
		return inv.DueDate != nil
	case FieldAmount:
		return inv.Amount != nil
	case FieldIVA:
		return inv.IVA != nil
	case FieldAmountGrav:
		return inv.AmountGrav != nil
	case FieldAmountNoGrav:
		return inv.AmountNoGrav != nil
	case FieldAmountExen:
		return inv.AmountExen != nil
	case FieldCAE:
		return inv.CAE != nil
	case FieldTaxCode:
		return inv.TaxCode != nil
	case FieldBillingPeriod:
		return inv.BillingPeriod != nil && (inv.BillingPeriod.From != nil || inv.BillingPeriod.To != nil)
	case FieldOtherTaxes:
		return len(inv.OtherTaxes) > 0
	case FieldItems:
		return len(inv.Items) > 0
	}
	return false
}

// PopulatedFields counts the distinct fields carrying a value.
func (inv *ExtractedInvoice) PopulatedFields() int {
	n := 0
	for _, f := range AllFields {
		if inv.Populated(f) {
			n++
		}
	}
	return n
}

// AllFields lists every Field in record order.
var AllFields = []Field{
	FieldSupplierCUIT, FieldSupplierName, FieldSupplierAddress, FieldClient,
	FieldCurrency, FieldInvoiceType, FieldInvoiceNumber, FieldPointSale,
	FieldDocumentDate, FieldDueDate, FieldAmount, FieldIVA, FieldAmountGrav,
	FieldAmountNoGrav, FieldAmountExen, FieldCAE, FieldTaxCode,
	FieldBillingPeriod, FieldOtherTaxes, FieldItems,
}

// Clone returns a deep copy so callers never share mutable state.
func (inv *ExtractedInvoice) Clone() *ExtractedInvoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.Supplier = Supplier{
		CUIT:    cloneString(inv.Supplier.CUIT),
		Name:    cloneString(inv.Supplier.Name),
		Address: cloneString(inv.Supplier.Address),
	}
	if inv.Client != nil {
		out.Client = &Client{
			Name:    cloneString(inv.Client.Name),
			CUIT:    cloneString(inv.Client.CUIT),
			Address: cloneString(inv.Client.Address),
			Code:    cloneString(inv.Client.Code),
		}
	}
	out.InvoiceType = cloneString(inv.InvoiceType)
	out.InvoiceNumber = cloneString(inv.InvoiceNumber)
	out.PointSale = cloneString(inv.PointSale)
	out.DocumentDate = cloneString(inv.DocumentDate)
	out.DueDate = cloneString(inv.DueDate)
	out.CAE = cloneString(inv.CAE)
	out.TaxCode = cloneString(inv.TaxCode)
	out.Amount = cloneDecimal(inv.Amount)
	out.IVA = cloneDecimal(inv.IVA)
	out.AmountGrav = cloneDecimal(inv.AmountGrav)
	out.AmountNoGrav = cloneDecimal(inv.AmountNoGrav)
	out.AmountExen = cloneDecimal(inv.AmountExen)
	if inv.BillingPeriod != nil {
		out.BillingPeriod = &Period{From: cloneString(inv.BillingPeriod.From), To: cloneString(inv.BillingPeriod.To)}
	}
	if inv.OtherTaxes != nil {
		out.OtherTaxes = make([]OtherTax, len(inv.OtherTaxes))
		for i, t := range inv.OtherTaxes {
			out.OtherTaxes[i] = OtherTax{Name: t.Name, Amount: cloneDecimal(t.Amount)}
		}
	}
	out.Items = make([]LineItem, len(inv.Items))
	for i, it := range inv.Items {
		out.Items[i] = LineItem{
			Description: it.Description,
			Quantity:    cloneDecimal(it.Quantity),
			UnitPrice:   cloneDecimal(it.UnitPrice),
			Total:       cloneDecimal(it.Total),
			Discount:    cloneDecimal(it.Discount),
		}
	}
	out.Confidence = make(map[Field]float64, len(inv.Confidence))
	for k, v := range inv.Confidence {
		out.Confidence[k] = v
	}
	out.Reasoning = make(map[Field]string, len(inv.Reasoning))
	for k, v := range inv.Reasoning {
		out.Reasoning[k] = v
	}
	return &out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// DecimalPtr returns a pointer to d.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
