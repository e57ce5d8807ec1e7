package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Тексты от пользователей хранятся без HTML разметки.
var textPolicy = bluemonday.StrictPolicy()

const maxCleanPasses = 8

// Раскодируются только сущности, из которых нельзя собрать тег.
var safeEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// cleanText раскодирует сущности и удаляет теги, пока текст не перестанет меняться:
// вложенные теги и закодированная разметка не собираются обратно в живой HTML.
// Угловые скобки в итоговом тексте остаются в виде &lt; и &gt;.
func cleanText(s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := textPolicy.Sanitize(html.UnescapeString(s))
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(safeEntities.Replace(s))
}
