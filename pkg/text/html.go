package text

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainDescription turns a seller-supplied description, which the web
// editor stores as HTML, into plain paragraphs suitable for markdown
// rendering. Text that is not HTML comes back trimmed but otherwise intact.
func PlainDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if !strings.Contains(desc, "<") {
		return desc
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return desc
	}
	doc.Find("script, style").Remove()

	var paragraphs []string
	blocks := doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote")
	if blocks.Length() == 0 {
		if t := collapseSpace(doc.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	}
	blocks.Each(func(_ int, s *goquery.Selection) {
		t := collapseSpace(s.Text())
		if t == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			t = "- " + t
		}
		paragraphs = append(paragraphs, t)
	})
	return strings.Join(paragraphs, "\n\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
