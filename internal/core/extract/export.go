package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Static values expected by the downstream accounting system.
const (
	ExportExchangeType = "1"
	ExportActive       = true
	ExportHasPO        = false
)

// ExportSupplier is always present in the payload.
type ExportSupplier struct {
	CUIT    *string `json:"cuit"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// ExportClient is always present in the payload.
type ExportClient struct {
	Name    *string `json:"name"`
	CUIT    *string `json:"cuit"`
	Address *string `json:"address"`
	Code    *string `json:"code"`
}

// ExportItem is one line of the payload item list.
type ExportItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Total       *float64 `json:"total"`
}

// ExportPayload is the flat document handed to the accounting system.
// Every key is always emitted; absent values are null.
type ExportPayload struct {
	Supplier       ExportSupplier `json:"supplier"`
	Client         ExportClient   `json:"client"`
	Currency       string         `json:"currency"`
	CurrencySymbol string         `json:"currencySymbol"`
	InvoiceType    *string        `json:"invoiceType"`
	InvoiceNumber  *string        `json:"invoiceNumber"`
	PointSale      *string        `json:"pointSale"`
	DocumentDate   *string        `json:"documentDate"`
	DueDate        *string        `json:"dueDate"`
	Amount         *float64       `json:"amount"`
	IVA            *float64       `json:"iva"`
	AmountGrav     *float64       `json:"amountGrav"`
	AmountNoGrav   *float64       `json:"amountNoGrav"`
	AmountExen     *float64       `json:"amountExen"`
	CAE            *string        `json:"cae"`
	TaxCode        *string        `json:"taxCode"`
	ExchangeType   string         `json:"exchangeType"`
	Active         bool           `json:"active"`
	HasPO          bool           `json:"hasPo"`
	Items          []ExportItem   `json:"items"`
}

// ToExportPayload projects a record onto the export shape. It accepts any
// record, including nil, and never fails.
func ToExportPayload(inv *entity.ExtractedInvoice) ExportPayload {
	if inv == nil {
		inv = entity.NewExtractedInvoice()
	}
	code, sym := constants.CanonicalCurrency(inv.Currency)

	p := ExportPayload{
		Supplier: ExportSupplier{
			CUIT:    inv.Supplier.CUIT,
			Name:    inv.Supplier.Name,
			Address: inv.Supplier.Address,
		},
		Currency:       code,
		CurrencySymbol: sym,
		InvoiceType:    inv.InvoiceType,
		InvoiceNumber:  inv.InvoiceNumber,
		PointSale:      inv.PointSale,
		DocumentDate:   inv.DocumentDate,
		DueDate:        inv.DueDate,
		Amount:         toFloat(inv.Amount),
		IVA:            toFloat(inv.IVA),
		AmountGrav:     toFloat(inv.AmountGrav),
		AmountNoGrav:   toFloat(inv.AmountNoGrav),
		AmountExen:     toFloat(inv.AmountExen),
		CAE:            inv.CAE,
		TaxCode:        inv.TaxCode,
		ExchangeType:   ExportExchangeType,
		Active:         ExportActive,
		HasPO:          ExportHasPO,
		Items:          make([]ExportItem, 0, len(inv.Items)),
	}
	if inv.Client != nil {
		p.Client = ExportClient{
			Name:    inv.Client.Name,
			CUIT:    inv.Client.CUIT,
			Address: inv.Client.Address,
			Code:    inv.Client.Code,
		}
	}
	for _, it := range inv.Items {
		p.Items = append(p.Items, ExportItem{
			Description: it.Description,
			Quantity:    toFloat(it.Quantity),
			UnitPrice:   toFloat(it.UnitPrice),
			Total:       toFloat(it.Total),
		})
	}
	return p
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ExportFilename names the downloadable JSON for a record.
func ExportFilename(inv *entity.ExtractedInvoice) string {
	if inv == nil || inv.InvoiceNumber == nil || *inv.InvoiceNumber == "" {
		return "invoice.json"
	}
	return "invoice_" + unsafeFilename.ReplaceAllString(*inv.InvoiceNumber, "_") + ".json"
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
