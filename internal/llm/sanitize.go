package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

var (
	reFence   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDigits  = regexp.MustCompile(`\d+`)
)

var (
	topStringKeys = []string{"invoiceType", "invoiceNumber", "pointSale", "taxCode", "currencySymbol"}
	topDateKeys   = []string{"documentDate", "dueDate"}
	topMoneyKeys  = []string{"amount", "iva", "amountGrav", "amountNoGrav", "amountExen"}
	itemNumKeys   = []string{"quantity", "unit_price", "total", "discount"}
	allowedTop    = map[string]struct{}{
		"supplier": {}, "client": {}, "currency": {}, "currencySymbol": {},
		"invoiceType": {}, "invoiceNumber": {}, "pointSale": {},
		"documentDate": {}, "dueDate": {}, "amount": {}, "iva": {},
		"amountGrav": {}, "amountNoGrav": {}, "amountExen": {}, "cae": {},
		"taxCode": {}, "billingPeriod": {}, "otherTaxes": {}, "items": {},
		"confidence": {}, "reasoning": {},
	}
)

// StripCodeFences returns the JSON body of a completion, removing markdown
// fences and any prose around the outermost object.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); len(m) == 2 {
		s = m[1]
	}
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		s = s[i : j+1]
	}
	return strings.TrimSpace(s)
}

// SanitizeInvoiceJSON normalizes a model reply before validation:
//   - drops nulls, empty strings and unknown keys
//   - coerces numbers to strings for textual fields (cae, invoice number...)
//   - coerces numeric strings to numbers for money fields
//   - rewrites DD/MM/YYYY dates to ISO and drops dates it cannot read
//   - keeps only numeric confidence and textual reasoning entries
//
// It returns the cleaned document and the list of touched keys.
func SanitizeInvoiceJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("sanitize: not a json object")
	}

	s := &sanitizer{}

	for k := range maps.Clone(m) {
		if _, ok := allowedTop[k]; !ok {
			delete(m, k)
			s.drop(k + "(unknown)")
		}
	}

	s.party(m, "supplier", "cuit", "name", "address")
	s.party(m, "client", "name", "cuit", "address", "code")

	if v, ok := m["currency"]; ok {
		if str, ok := v.(string); ok && strings.TrimSpace(str) != "" {
			m["currency"] = strings.ToUpper(strings.TrimSpace(str))
		} else {
			delete(m, "currency")
			s.drop("currency")
		}
	}
	for _, k := range topStringKeys {
		s.text(m, k, k)
	}
	if v, ok := m["cae"]; ok {
		digits := strings.Join(reDigits.FindAllString(textValue(v), -1), "")
		if digits == "" {
			delete(m, "cae")
			s.drop("cae")
		} else {
			m["cae"] = digits
		}
	}
	for _, k := range topDateKeys {
		s.date(m, k, k)
	}
	for _, k := range topMoneyKeys {
		s.money(m, k, k)
	}

	if v, ok := m["billingPeriod"]; ok {
		bp, isMap := v.(map[string]any)
		if !isMap {
			delete(m, "billingPeriod")
			s.drop("billingPeriod(type)")
		} else {
			for k := range maps.Clone(bp) {
				if k != "from" && k != "to" {
					delete(bp, k)
				}
			}
			s.date(bp, "from", "billingPeriod.from")
			s.date(bp, "to", "billingPeriod.to")
			if len(bp) == 0 {
				delete(m, "billingPeriod")
			}
		}
	}

	s.list(m, "otherTaxes", func(obj map[string]any, path string) bool {
		for k := range maps.Clone(obj) {
			if k != "name" && k != "amount" {
				delete(obj, k)
			}
		}
		s.text(obj, "name", path+".name")
		s.number(obj, "amount", path+".amount")
		_, hasName := obj["name"]
		return hasName
	})

	s.list(m, "items", func(obj map[string]any, path string) bool {
		for k := range maps.Clone(obj) {
			if k != "description" && !slices.Contains(itemNumKeys, k) {
				delete(obj, k)
			}
		}
		if v, ok := obj["description"]; ok {
			obj["description"] = strings.TrimSpace(textValue(v))
		}
		for _, k := range itemNumKeys {
			s.number(obj, k, path+"."+k)
		}
		return len(obj) > 0
	})
	if _, ok := m["items"]; !ok {
		m["items"] = []any{}
	}

	s.confidence(m)
	s.reasoning(m)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, s.touched, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(s.touched) > 0 {
		logger.Debug("llm.extract.sanitize", "touched", s.touched)
	}
	return out, s.touched, nil
}

type sanitizer struct {
	touched []string
}

func (s *sanitizer) drop(k string) { s.touched = append(s.touched, k) }

func (s *sanitizer) party(m map[string]any, key string, fields ...string) {
	v, ok := m[key]
	if !ok {
		return
	}
	obj, isMap := v.(map[string]any)
	if !isMap {
		delete(m, key)
		s.drop(key + "(type)")
		return
	}
	for k := range maps.Clone(obj) {
		if !slices.Contains(fields, k) {
			delete(obj, k)
			s.drop(key + "." + k + "(unknown)")
		}
	}
	for _, f := range fields {
		s.text(obj, f, key+"."+f)
	}
	if len(obj) == 0 {
		delete(m, key)
	}
}

func (s *sanitizer) text(m map[string]any, k, path string) {
	v, ok := m[k]
	if !ok {
		return
	}
	str := strings.TrimSpace(textValue(v))
	if str == "" || strings.EqualFold(str, "null") {
		delete(m, k)
		s.drop(path)
		return
	}
	m[k] = str
}

func (s *sanitizer) date(m map[string]any, k, path string) {
	v, ok := m[k]
	if !ok {
		return
	}
	str, _ := v.(string)
	str = normalize.NormalizeDate(strings.TrimSpace(str))
	if !reISODate.MatchString(str) {
		delete(m, k)
		s.drop(path)
		return
	}
	m[k] = str
}

func (s *sanitizer) money(m map[string]any, k, path string) {
	s.number(m, k, path)
	if f, ok := m[k].(float64); ok && f < 0 {
		m[k] = -f
		s.drop(path + "(sign)")
	}
}

func (s *sanitizer) number(m map[string]any, k, path string) {
	v, ok := m[k]
	if !ok {
		return
	}
	if f, ok := numberValue(v); ok {
		m[k] = f
		return
	}
	delete(m, k)
	s.drop(path)
}

func (s *sanitizer) list(m map[string]any, k string, keep func(obj map[string]any, path string) bool) {
	v, ok := m[k]
	if !ok {
		return
	}
	arr, isArr := v.([]any)
	if !isArr {
		delete(m, k)
		s.drop(k + "(type)")
		return
	}
	out := make([]any, 0, len(arr))
	for i, el := range arr {
		obj, isMap := el.(map[string]any)
		path := fmt.Sprintf("%s[%d]", k, i)
		if !isMap || !keep(obj, path) {
			s.drop(path)
			continue
		}
		out = append(out, obj)
	}
	m[k] = out
}

// confidence keeps numeric entries and folds client_* keys onto "client".
func (s *sanitizer) confidence(m map[string]any) {
	v, ok := m["confidence"]
	if !ok {
		return
	}
	obj, isMap := v.(map[string]any)
	if !isMap {
		delete(m, "confidence")
		s.drop("confidence(type)")
		return
	}
	out := map[string]any{}
	for k, raw := range obj {
		f, ok := numberValue(raw)
		if !ok || f < 0 || f > 100 {
			s.drop("confidence." + k)
			continue
		}
		key := k
		if strings.HasPrefix(k, "client_") {
			key = string(entity.FieldClient)
		}
		if prev, ok := out[key].(float64); ok && prev > f {
			continue
		}
		out[key] = f
	}
	m["confidence"] = out
}

func (s *sanitizer) reasoning(m map[string]any) {
	v, ok := m["reasoning"]
	if !ok {
		return
	}
	obj, isMap := v.(map[string]any)
	if !isMap {
		delete(m, "reasoning")
		s.drop("reasoning(type)")
		return
	}
	out := map[string]any{}
	for k, raw := range obj {
		str, ok := raw.(string)
		if !ok || strings.TrimSpace(str) == "" {
			s.drop("reasoning." + k)
			continue
		}
		key := k
		if strings.HasPrefix(k, "client_") {
			key = string(entity.FieldClient)
		}
		if _, exists := out[key]; exists && key != k {
			continue
		}
		out[key] = strings.TrimSpace(str)
	}
	m["reasoning"] = out
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool, nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// numberValue reads JSON numbers and numeric strings. Strings with grouping
// separators go through normalize.ParseAmount.
func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		str := strings.TrimSpace(t)
		str = strings.TrimLeft(str, "$US ")
		if str == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f, true
		}
		neg := strings.HasPrefix(str, "-")
		d := normalize.ParseAmount(strings.TrimPrefix(str, "-"))
		if d.IsZero() && !strings.ContainsAny(str, "0") {
			return 0, false
		}
		f := d.InexactFloat64()
		if neg {
			f = -f
		}
		return f, true
	default:
		return 0, false
	}
}
