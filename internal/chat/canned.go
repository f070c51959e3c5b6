package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Responder answers a question about one extracted record.
type Responder interface {
	Respond(ctx context.Context, inv *entity.ExtractedInvoice, text, question string) (string, error)
}

const (
	summaryTopFields   = 5
	lowConfidenceLimit = 0.90
	itemsListed        = 5
)

// Topic is the intent picked from a question by keyword.
type Topic string

const (
	TopicCUIT       Topic = "cuit"
	TopicAmounts    Topic = "amounts"
	TopicConfidence Topic = "confidence"
	TopicDates      Topic = "dates"
	TopicItems      Topic = "items"
	TopicGeneric    Topic = "generic"
)

var topicKeywords = []struct {
	topic    Topic
	keywords []string
}{
	{TopicCUIT, []string{"cuit"}},
	{TopicAmounts, []string{"monto", "total", "calculaste", "amount", "importe"}},
	{TopicConfidence, []string{"dudoso", "seguro", "confianza", "confidence", "doubt", "sure"}},
	{TopicDates, []string{"fecha", "vencimiento", "date"}},
	{TopicItems, []string{"items", "ítems", "líneas", "lineas", "productos", "lines"}},
}

// DetectTopic picks the first topic whose keyword appears in question.
func DetectTopic(question string) Topic {
	q := strings.ToLower(question)
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(q, kw) {
				return t.topic
			}
		}
	}
	return TopicGeneric
}

// Canned answers from fixed templates. It never fails.
type Canned struct{}

var _ Responder = Canned{}

func (Canned) Respond(_ context.Context, inv *entity.ExtractedInvoice, _ string, question string) (string, error) {
	if inv == nil {
		inv = entity.NewExtractedInvoice()
	}
	switch DetectTopic(question) {
	case TopicCUIT:
		return answerCUIT(inv), nil
	case TopicAmounts:
		return answerAmounts(inv), nil
	case TopicConfidence:
		return answerConfidence(inv), nil
	case TopicDates:
		return answerDates(inv), nil
	case TopicItems:
		return answerItems(inv), nil
	default:
		return answerGeneric(), nil
	}
}

// Summary is the first message shown after an extraction.
func Summary(inv *entity.ExtractedInvoice) string {
	if inv == nil {
		inv = entity.NewExtractedInvoice()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analicé la factura. Esto es lo que encontré:\n\n")
	fmt.Fprintf(&b, "**Factura tipo %s - N° %s**\n\n", orMissing(inv.InvoiceType), orMissing(inv.InvoiceNumber))
	fmt.Fprintf(&b, "Proveedor: %s\n", orMissing(inv.Supplier.Name))
	fmt.Fprintf(&b, "- CUIT: %s\n\n", orMissing(inv.Supplier.CUIT))
	fmt.Fprintf(&b, "Monto total: %s\n", money(inv.CurrencySymbol, inv.Amount))

	var high []string
	orderedConfidence(inv, func(f entity.Field, c float64) {
		if c >= 0.95 && len(high) < summaryTopFields {
			high = append(high, fmt.Sprintf("- %s: %s", fieldLabel(f), percent(c)))
		}
	})
	if len(high) > 0 {
		b.WriteString("\nCampos con alta confianza:\n")
		b.WriteString(strings.Join(high, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nResumen de la extracción:\n")
	fmt.Fprintf(&b, "- Campos detectados: %d\n", inv.PopulatedFields())
	if mean, ok := meanConfidence(inv); ok {
		fmt.Fprintf(&b, "- Confianza promedio: %.1f%%\n", mean*100)
	} else {
		b.WriteString("- Confianza promedio: sin datos\n")
	}
	b.WriteString("\nPodés preguntarme por cualquier campo, cómo lo detecté o qué conviene revisar.")
	return b.String()
}

func answerCUIT(inv *entity.ExtractedInvoice) string {
	c, found := inv.Confidence[entity.FieldSupplierCUIT]
	c = normalize.NormalizeConfidence(c)
	var b strings.Builder
	b.WriteString("CUIT del proveedor:\n\n")
	fmt.Fprintf(&b, "- Valor: %s\n", orMissing(inv.Supplier.CUIT))
	if !found {
		b.WriteString("- No encontré un CUIT con formato XX-XXXXXXXX-X en el documento.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Confianza: %.1f%%\n", c*100)
	if r := inv.Reasoning[entity.FieldSupplierCUIT]; r != "" {
		fmt.Fprintf(&b, "- Cómo lo detecté: %s\n", r)
	}
	if c > 0.95 {
		b.WriteString("\nEl formato es correcto y el valor es muy confiable.")
	} else {
		b.WriteString("\nConviene verificarlo contra el documento original.")
	}
	return b.String()
}

func answerAmounts(inv *entity.ExtractedInvoice) string {
	sym := inv.CurrencySymbol
	var b strings.Builder
	b.WriteString("Montos detectados:\n\n")
	fmt.Fprintf(&b, "- Total: %s", money(sym, inv.Amount))
	if c, ok := inv.Confidence[entity.FieldAmount]; ok {
		fmt.Fprintf(&b, " (confianza %s)", percent(c))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Subtotal gravado: %s\n", money(sym, inv.AmountGrav))
	fmt.Fprintf(&b, "- IVA / impuestos: %s\n", money(sym, inv.IVA))

	if inv.Amount != nil && inv.AmountGrav != nil && inv.IVA != nil {
		sum := inv.AmountGrav.Add(*inv.IVA)
		if sum.Round(2).Equal(inv.Amount.Round(2)) {
			b.WriteString("\nSubtotal + impuestos coincide con el total.")
		} else {
			fmt.Fprintf(&b, "\nSubtotal + impuestos suma %s y no coincide con el total; puede haber otros conceptos o percepciones.",
				money(sym, &sum))
		}
	} else {
		b.WriteString("\nNo tengo todos los componentes para verificar la suma.")
	}
	return b.String()
}

func answerConfidence(inv *entity.ExtractedInvoice) string {
	var low []string
	orderedConfidence(inv, func(f entity.Field, c float64) {
		if c < lowConfidenceLimit {
			low = append(low, fmt.Sprintf("- %s: %s", fieldLabel(f), percent(c)))
		}
	})
	var b strings.Builder
	if len(low) > 0 {
		b.WriteString("Campos con menor confianza:\n\n")
		b.WriteString(strings.Join(low, "\n"))
		b.WriteString("\n\nTe recomiendo revisarlos manualmente antes de exportar.")
		return b.String()
	}
	b.WriteString("Ningún campo detectado tiene confianza menor al 90%.\n")
	if mean, ok := meanConfidence(inv); ok {
		fmt.Fprintf(&b, "Confianza promedio: %.1f%%\n", mean*100)
	}
	b.WriteString("Podés exportar la factura con tranquilidad.")
	return b.String()
}

func answerDates(inv *entity.ExtractedInvoice) string {
	var b strings.Builder
	b.WriteString("Fechas de la factura (formato YYYY-MM-DD):\n\n")
	dateLine(&b, inv, "Emisión", inv.DocumentDate, entity.FieldDocumentDate)
	dateLine(&b, inv, "Vencimiento", inv.DueDate, entity.FieldDueDate)
	return b.String()
}

func dateLine(b *strings.Builder, inv *entity.ExtractedInvoice, label string, v *string, f entity.Field) {
	fmt.Fprintf(b, "- %s: %s", label, orMissing(v))
	if c, ok := inv.Confidence[f]; ok {
		fmt.Fprintf(b, " (confianza %s)", percent(c))
	}
	b.WriteString("\n")
	if r := inv.Reasoning[f]; r != "" {
		fmt.Fprintf(b, "  %s\n", r)
	}
}

func answerItems(inv *entity.ExtractedInvoice) string {
	if len(inv.Items) == 0 {
		return "No detecté líneas individuales en esta factura, solo los montos totales. " +
			"Suele pasar con facturas de un único concepto o con tablas sin formato estándar."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Identifiqué %d línea(s):\n\n", len(inv.Items))
	for i, it := range inv.Items {
		if i == itemsListed {
			fmt.Fprintf(&b, "... y %d más\n", len(inv.Items)-itemsListed)
			break
		}
		desc := it.Description
		if desc == "" {
			desc = "Sin descripción"
		}
		if r := []rune(desc); len(r) > 50 {
			desc = string(r[:50]) + "..."
		}
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, desc, money(inv.CurrencySymbol, it.Total))
	}
	return b.String()
}

func answerGeneric() string {
	return strings.Join([]string{
		"Puedo ayudarte con los datos extraídos:",
		"- Proveedor (CUIT, razón social, dirección)",
		"- Factura (tipo, número, CAE)",
		"- Fechas (emisión, vencimiento)",
		"- Montos (total, IVA, subtotales)",
		"- Líneas de detalle, si las hay",
		"",
		"Preguntame por la confianza de un campo, cómo lo detecté o qué conviene revisar.",
	}, "\n")
}
