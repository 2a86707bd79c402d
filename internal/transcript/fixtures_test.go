package transcript_test

import (
	"fmt"
	"strings"
	"testing"
	"transcript-scraper/internal/htmldoc"
	"transcript-scraper/internal/transcript"
)

type fixtureMessage struct {
	id      string
	content string
	edited  bool
	stars   string
	noFlash bool
}

type fixtureMonologue struct {
	signature string
	messages  []fixtureMessage
}

type fixturePage struct {
	title      string
	pager      string
	relNext    string
	monologues []fixtureMonologue
}

func signature(userId int64, name string) string {
	return fmt.Sprintf(
		`<div class="tiny-signature"><div class="username"><a href="/users/%d/%s" title="%s">%s</a></div></div>`,
		userId, strings.ToLower(strings.ReplaceAll(name, " ", "-")), name, name,
	)
}

// pager renders a pager for a day split into segments, current is the index
// of the page being rendered.
func pager(current int, hrefs ...string) string {
	var out strings.Builder
	out.WriteString(`<div class="pager">`)
	for i, href := range hrefs {
		if i == current {
			fmt.Fprintf(&out, "\n\t<span class=\"page-numbers current\">%d</span>", i+1)
			continue
		}
		fmt.Fprintf(&out, "\n\t<a href=\"%s\"><span class=\"page-numbers\">%d</span></a>", href, i+1)
	}
	out.WriteString("\n</div>")
	return out.String()
}

func (p fixturePage) render() string {
	var out strings.Builder
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head><title>%s</title></head>\n<body>\n", p.title)
	out.WriteString(`<div id="transcript">`)
	for _, m := range p.monologues {
		out.WriteString("\n<div class=\"monologue\">\n")
		fmt.Fprintf(&out, "\t<div class=\"signature\">%s</div>\n", m.signature)
		out.WriteString("\t<div class=\"messages\">\n")
		for _, msg := range m.messages {
			fmt.Fprintf(&out, "\t\t<div class=\"message\" id=\"%s\">", msg.id)
			fmt.Fprintf(&out, `<a name="%s"></a>`, strings.TrimPrefix(msg.id, "message-"))
			if msg.edited {
				out.WriteString(`<span class="edits" title="edited">&#9998;</span>`)
			}
			fmt.Fprintf(&out, `<div class="content">%s</div>`, msg.content)
			if !msg.noFlash {
				fmt.Fprintf(
					&out,
					`<span class="flash"><span class="stars vote-count-container"><span class="img vote"></span><span class="times">%s</span></span></span>`,
					msg.stars,
				)
			}
			out.WriteString("</div>\n")
		}
		out.WriteString("\t</div>\n</div>")
	}
	out.WriteString("\n</div>\n")
	if p.pager != "" {
		out.WriteString(p.pager + "\n")
	}
	if p.relNext != "" {
		fmt.Fprintf(&out, "<a rel=\"next\" href=\"%s\" title=\"go forward a day\">next day &raquo;</a>\n", p.relNext)
	}
	out.WriteString("</body>\n</html>\n")
	return out.String()
}

func parse(t testing.TB, markup string) transcript.Document {
	t.Helper()
	doc, err := htmldoc.Parser{}.Parse(markup)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}
