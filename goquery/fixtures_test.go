package goquery_test

import (
	"fmt"
	"strings"
)

// questionItem renders a question item with the given option enums.
func questionItem(year, board, enunciation string, options ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="q-question-item">`)
	fmt.Fprintf(&b, `<div class="q-question-info"><span>Ano: %s</span><span>Banca: %s</span></div>`, year, board)
	fmt.Fprintf(&b, `<div class="q-question-enunciation">%s</div>`, enunciation)
	b.WriteString(`<ul class="q-question-options">`)
	for _, o := range options {
		fmt.Fprintf(&b, `<li><label><div class="q-item-enum">%s</div></label></li>`, o)
	}
	b.WriteString(`</ul></div>`)
	return b.String()
}

func resultsPage(body string) string {
	return `<!DOCTYPE html><html><head><title>Questões</title></head><body>` + body + `</body></html>`
}
