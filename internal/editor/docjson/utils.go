package docjson

import (
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	val, ok := attrs[key]
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// getAttrInt безопасно извлекает целочисленный атрибут из map.
func getAttrInt(attrs map[string]interface{}, key string) int {
	if attrs == nil {
		return 0
	}
	val, ok := attrs[key]
	if !ok {
		return 0
	}

	// Может быть float64 из JSON
	if f, ok := val.(float64); ok {
		return int(f)
	}

	if i, ok := val.(int); ok {
		return i
	}

	return 0
}

// parseTextAlign конвертирует строковое значение выравнивания в TextAlign.
func parseTextAlign(align string) document.TextAlign {
	switch strings.TrimSpace(strings.ToLower(align)) {
	case "left":
		return document.LeftAlign
	case "center":
		return document.CenterAlign
	case "right":
		return document.RightAlign
	default:
		return document.LeftAlign
	}
}

// serializeTextAlign преобразует TextAlign в строку.
func serializeTextAlign(align document.TextAlign) string {
	switch align {
	case document.CenterAlign:
		return "center"
	case document.RightAlign:
		return "right"
	default:
		return "left"
	}
}
