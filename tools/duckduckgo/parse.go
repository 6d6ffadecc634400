package duckduckgo

import (
	"io"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/itinerary-agents/tools"
)

// parseResults extracts results from the lite page. Each result is a row holding
// an a.result-link, followed by a row holding td.result-snippet.
func parseResults(r io.Reader, limit int) ([]tools.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	results := make([]tools.SearchResult, 0, limit)
	seen := make(map[string]struct{}, limit)
	doc.Find("a.result-link").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		target := resolveLink(href)
		title := strings.TrimSpace(link.Text())
		if target == "" || title == "" || isAd(link) {
			return true
		}
		if _, ok := seen[target]; ok {
			return true
		}
		seen[target] = struct{}{}
		results = append(results, tools.SearchResult{
			Title:   title,
			URL:     target,
			Snippet: snippetFor(link),
		})
		return len(results) < limit
	})
	return results, nil
}

// snippetFor walks the rows after the link row until the next result
func snippetFor(link *goquery.Selection) string {
	var snippet string
	link.Closest("tr").NextAll().EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.Find("a.result-link").Length() > 0 {
			return false
		}
		cell := row.Find("td.result-snippet")
		if cell.Length() == 0 {
			return true
		}
		html, err := cell.Html()
		if err != nil {
			return false
		}
		snippet = cleanSnippet(html)
		return false
	})
	return snippet
}

func cleanSnippet(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(md), " ")
}

// resolveLink unwraps duckduckgo redirect links (//duckduckgo.com/l/?uddg=...)
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// isAd reports sponsored rows, which the lite page marks with result-sponsored
func isAd(link *goquery.Selection) bool {
	return link.Closest("tr").HasClass("result-sponsored")
}
