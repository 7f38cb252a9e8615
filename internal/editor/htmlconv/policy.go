// Пакет htmlconv конвертирует дерево документа в HTML и обратно.
// Входной HTML проходит через политику санитизации, чтобы вставка из буфера
// обмена не протаскивала скрипты и опасные атрибуты в документ.
//
// Основные возможности:
//   - Парсинг HTML-фрагментов (вставка из внешних редакторов) в дерево документа.
//   - Сериализация дерева документа в HTML для экспорта и предпросмотра.
//   - Санитизация входного HTML политикой на базе bluemonday.
package htmlconv

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// PastePolicy - политика санитизации вставляемого HTML. База - UGC политика,
// поверх нее разрешаются стили и атрибуты, которые дерево документа умеет
// представлять.
var PastePolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgb\((\d+),\s*(\d+),\s*(\d+)\)|inherit)$`)
	sizeRegexp := regexp.MustCompile(`^\d+(px|em|rem|pt)?$`)
	fontRegexp := regexp.MustCompile(`^(serif|sans-serif|monospace|cursive|fantasy|system-ui)$`)
	langClassRegexp := regexp.MustCompile(`^language-[a-zA-Z0-9+-]+$`)

	PastePolicy.AllowAttrs("style").OnElements("span", "p", "td", "th")
	PastePolicy.AllowAttrs("class").Matching(langClassRegexp).OnElements("code")
	PastePolicy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	PastePolicy.AllowAttrs("width").Matching(sizeRegexp).OnElements("img")
	PastePolicy.AllowAttrs("start").OnElements("ol")

	PastePolicy.AllowStyles("color", "background-color").Matching(colorRegexp).Globally()
	PastePolicy.AllowStyles("font-size").Matching(sizeRegexp).Globally()
	PastePolicy.AllowStyles("font-family").Matching(fontRegexp).Globally()
	PastePolicy.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()

	PastePolicy.AllowElements("u", "s", "hr")
	PastePolicy.AllowImages()
	PastePolicy.AllowTables()
	PastePolicy.RequireNoFollowOnLinks(false)
}
