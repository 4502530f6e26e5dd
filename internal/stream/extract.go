package stream

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// maxSuggestions caps the follow-up suggestion chips.
const maxSuggestions = 5

// Placeholder values for bundles whose fields the backend omitted.
const (
	defaultBundleName        = "推荐解决方案"
	defaultBundleDescription = "根据您的业务需求定制的云服务组合"
)

// StructuredData is the normalized metadata extracted from one payload.
type StructuredData struct {
	// Bundle is the recommended solution, nil when the payload carried none.
	Bundle *entity.Bundle
	// Suggestions are the normalized follow-up prompts. Only meaningful
	// when HasSuggestions is set: the set is wholly replaced on each event
	// and an invalid shape clears it.
	Suggestions    []string
	HasSuggestions bool
	// ConversationID is the server-issued identifier, empty when absent.
	ConversationID string
}

// Empty reports whether extraction produced nothing to apply.
func (d StructuredData) Empty() bool {
	return d.Bundle == nil && !d.HasSuggestions && d.ConversationID == ""
}

// ExtractStructured pulls the optional structured fields out of a parsed
// payload object. When the interesting fields are nested inside a JSON (or
// JSON-bearing) "content" string, one level of unwrapping is performed.
// Field-level failures degrade that field to its empty value and never abort
// extraction of the rest.
func ExtractStructured(obj map[string]interface{}) StructuredData {
	if obj == nil {
		return StructuredData{}
	}
	obj = unwrapContent(obj)

	var data StructuredData

	if raw, ok := obj["recommendation"]; ok {
		data.Bundle = normalizeBundle(raw)
	}

	if raw, ok := obj["suggestions"]; ok {
		data.Suggestions = normalizeSuggestions(raw)
		data.HasSuggestions = true
	}

	if id, ok := obj["conversation_id"]; ok {
		if s, ok := id.(string); ok && s != "" {
			data.ConversationID = s
		}
	}

	return data
}

// unwrapContent peels one layer of JSON-within-JSON: when the structured
// fields live inside a "content" string rather than at the top level, the
// embedded object replaces the outer one.
func unwrapContent(obj map[string]interface{}) map[string]interface{} {
	if _, ok := obj["recommendation"]; ok {
		return obj
	}
	if _, ok := obj["suggestions"]; ok {
		return obj
	}
	content, ok := obj["content"].(string)
	if !ok {
		return obj
	}

	var nested map[string]interface{}
	if err := sonic.UnmarshalString(content, &nested); err == nil && nested != nil {
		return mergeConversationID(obj, nested)
	}
	for _, candidate := range scanJSONObjects(content) {
		if !strings.Contains(candidate, `"recommendation"`) && !strings.Contains(candidate, `"suggestions"`) {
			continue
		}
		var embedded map[string]interface{}
		if err := sonic.UnmarshalString(candidate, &embedded); err == nil && embedded != nil {
			return mergeConversationID(obj, embedded)
		}
	}
	return obj
}

// mergeConversationID keeps an outer conversation_id visible after
// unwrapping, so the id is not lost when only the bundle was nested.
func mergeConversationID(outer, inner map[string]interface{}) map[string]interface{} {
	if _, ok := inner["conversation_id"]; ok {
		return inner
	}
	if id, ok := outer["conversation_id"]; ok {
		inner["conversation_id"] = id
	}
	return inner
}

// normalizeBundle coerces a raw recommendation value into a well-formed
// bundle. Missing names and descriptions get placeholders, product ids are
// synthesized when absent and quantities are coerced to positive integers.
// A recommendation that is not an object at all yields nil.
func normalizeBundle(raw interface{}) *entity.Bundle {
	rec, ok := raw.(map[string]interface{})
	if !ok {
		slog.Debug("recommendation has unexpected shape, dropping", "type", fmt.Sprintf("%T", raw))
		return nil
	}

	bundle := &entity.Bundle{
		Name:        stringField(rec, "name", defaultBundleName),
		Description: stringField(rec, "description", defaultBundleDescription),
	}

	products, ok := rec["products"].([]interface{})
	if !ok {
		if _, present := rec["products"]; present {
			slog.Debug("recommendation products is not an array, dropping products")
		}
		return bundle
	}

	for i, item := range products {
		p, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		product := entity.BundleProduct{
			ID:       stringField(p, "id", fmt.Sprintf("product-%d", i+1)),
			Quantity: coerceQuantity(p["quantity"]),
		}
		product.Name = stringField(p, "name", product.ID)
		bundle.Products = append(bundle.Products, product)
	}
	return bundle
}

// normalizeSuggestions keeps only non-empty string entries, trimmed and
// capped. Any non-array shape clears the set.
func normalizeSuggestions(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		slog.Debug("suggestions has unexpected shape, clearing", "type", fmt.Sprintf("%T", raw))
		return nil
	}
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// coerceQuantity turns whatever the backend sent into a positive integer.
// Numeric strings are parsed; anything unusable defaults to 1.
func coerceQuantity(raw interface{}) int {
	switch v := raw.(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 1 {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 1 {
			return int(f)
		}
	}
	return 1
}

func stringField(obj map[string]interface{}, key, fallback string) string {
	if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
