package llm

// Schema builders for structured extraction. Each returns a JSON-Schema
// (draft 2020-12 subset) as a generic map: passed to the model as an output
// constraint and used locally to validate whatever comes back. Every field
// is nullable on purpose; the cascade fills holes, the model must not. The
// extraction schemas carry no required list for the same reason: a key the
// model omits is a null field, not a reason to discard the ones it did
// return.

// BuildBillSchema describes the hospital-bill record shape.
func BuildBillSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"hospital_name":   nullableString(),
			"total_amount":    nullableAmount(),
			"date_of_service": nullableDate(),
			"patient_name":    nullableString(),
			"bill_number":     nullableString(),
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"amount":      nullableAmount(),
					},
					"required": []string{"description"},
				},
			},
		},
	}
}

// BuildDischargeSchema describes the discharge-summary record shape.
func BuildDischargeSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"patient_name":       nullableString(),
			"diagnosis":          nullableString(),
			"admission_date":     nullableDate(),
			"discharge_date":     nullableDate(),
			"treating_physician": nullableString(),
			"procedures":         stringArray(),
			"medications":        stringArray(),
		},
	}
}

// BuildIDCardSchema describes the insurance-card record shape.
func BuildIDCardSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"policy_holder_name": nullableString(),
			"policy_number":      nullableString(),
			"insurance_provider": nullableString(),
			"coverage_details":   nullableString(),
			"valid_from":         nullableDate(),
			"valid_until":        nullableDate(),
		},
	}
}

// BuildClassificationSchema describes the classifier's advisory response.
func BuildClassificationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"document_type": map[string]any{
				"type": "string",
				"enum": []string{"bill", "discharge_summary", "id_card", "unknown"},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"reasoning":  map[string]any{"type": "string"},
		},
		"required": []string{"document_type", "confidence"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableDate() map[string]any {
	// Models are told to emit ISO dates but may echo the source format;
	// callers parse with the ordered format list either way.
	return map[string]any{"type": []string{"string", "null"}, "minLength": 6}
}

func nullableAmount() map[string]any {
	// Numbers are accepted as JSON numbers or digit strings; currency
	// symbols and thousands separators are stripped by the caller.
	return map[string]any{"type": []string{"number", "string", "null"}}
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}
