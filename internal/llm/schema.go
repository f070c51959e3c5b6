package llm

// BuildInvoiceJSONSchema returns the JSON Schema (draft 2020-12 subset) the
// sanitized model output must satisfy. Every field is optional.
func BuildInvoiceJSONSchema() map[string]any {
	str := map[string]any{"type": "string", "minLength": 1}
	date := map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}

	party := func(keys ...string) map[string]any {
		props := map[string]any{}
		for _, k := range keys {
			props[k] = str
		}
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
		}
	}

	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "number"},
			"unit_price":  map[string]any{"type": "number"},
			"total":       map[string]any{"type": "number"},
			"discount":    map[string]any{"type": "number"},
		},
	}

	props := map[string]any{
		"supplier":       party("cuit", "name", "address"),
		"client":         party("name", "cuit", "address", "code"),
		"currency":       map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
		"currencySymbol": map[string]any{"type": "string"},
		"invoiceType":    str,
		"invoiceNumber":  str,
		"pointSale":      str,
		"documentDate":   date,
		"dueDate":        date,
		"amount":         moneyProp(),
		"iva":            moneyProp(),
		"amountGrav":     moneyProp(),
		"amountNoGrav":   moneyProp(),
		"amountExen":     moneyProp(),
		"cae":            map[string]any{"type": "string", "pattern": `^\d+$`},
		"taxCode":        str,
		"billingPeriod": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           map[string]any{"from": date, "to": date},
		},
		"otherTaxes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"name"},
				"properties": map[string]any{
					"name":   str,
					"amount": map[string]any{"type": "number"},
				},
			},
		},
		"items": map[string]any{"type": "array", "items": item},
		"confidence": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		},
		"reasoning": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func moneyProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}
