// Пакет docjson кодирует дерево документа во внешний JSON формат редактора
// и обратно. Формат совместим с JSON выводом браузерных rich-text редакторов:
// вложенные ноды с type, attrs, content, marks и text.
package docjson

// WireDocument представляет корневой документ внешнего формата.
type WireDocument struct {
	Type    string     `json:"type"`
	Content []WireNode `json:"content,omitempty"`
}

// WireNode представляет узел внешнего дерева документа.
// Используется универсальная структура с map для атрибутов для поддержки различных типов нод.
type WireNode struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []WireNode             `json:"content,omitempty"`
	Marks   []WireMark             `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// WireMark представляет форматирование текста (bold, italic, link и т.д.).
type WireMark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}
