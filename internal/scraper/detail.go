package scraper

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Known description containers, most specific first.
var descriptionSelectors = []string{
	".job-description",
	"#job-description",
	"#jobDescriptionText",
	".vacancy-description",
	"[itemprop='description']",
	".job-details__description",
}

var genericSelectors = []string{
	"article",
	"main",
	"#content",
	".content",
}

// ExtractDescription pulls the posting body out of a detail page via a
// priority cascade: embedded JSON-LD -> known containers -> generic
// containers -> noise-stripped body text. The last stage always yields
// something, so a structural surprise degrades rather than fails.
func ExtractDescription(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &ParseError{Err: err}
	}

	//Stage 1: structured metadata
	if desc := jsonLDField(doc, "description"); desc != "" {
		return stripTags(desc), nil
	}

	//Stage 2: known content containers
	for _, sel := range descriptionSelectors {
		if text := cleanText(doc.Find(sel).First().Text()); len(text) >= 40 {
			return text, nil
		}
	}

	//Stage 3: generic container fallback
	for _, sel := range genericSelectors {
		if text := cleanText(doc.Find(sel).First().Text()); len(text) >= 80 {
			return text, nil
		}
	}

	//Stage 4: raw body with navigation noise removed
	body := doc.Find("body").Clone()
	body.Find("script, style, nav, header, footer, form, iframe, noscript").Remove()
	return cleanText(body.Text()), nil
}

// ExtractPostedDate runs the posted-date cascade over a detail page:
// JSON-LD datePosted -> meta tags -> <time datetime> -> relative-time
// phrase -> free-text date. First stage with a parseable date wins.
func ExtractPostedDate(html string, now time.Time) (*time.Time, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ""
	}

	//Stage 1: structured metadata
	if raw := jsonLDField(doc, "datePosted"); raw != "" {
		if t, ok := ParsePostedDate(raw, now); ok {
			return &t, raw
		}
	}

	//Stage 2: meta tags
	for _, sel := range []string{
		"meta[itemprop='datePosted']",
		"meta[property='article:published_time']",
		"meta[name='date']",
	} {
		if raw, ok := doc.Find(sel).First().Attr("content"); ok {
			if t, parsed := ParsePostedDate(raw, now); parsed {
				return &t, raw
			}
		}
	}

	//Stage 3: visible time element
	var found *time.Time
	var foundRaw string
	doc.Find("time").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, ok := s.Attr("datetime")
		if !ok {
			raw = s.Text()
		}
		if t, parsed := ParsePostedDate(raw, now); parsed {
			found, foundRaw = &t, raw
			return false
		}
		return true
	})
	if found != nil {
		return found, foundRaw
	}

	//Stages 4+5: relative phrases and free-text dates in posting metadata
	for _, sel := range []string{".posted-date", ".post-date", ".posted", ".date"} {
		raw := cleanText(doc.Find(sel).First().Text())
		if raw == "" {
			continue
		}
		if t, parsed := ParsePostedDate(raw, now); parsed {
			return &t, raw
		}
	}

	return nil, ""
}

// jsonLDField digs a string field out of any ld+json block on the page.
// Handles plain objects, arrays, and @graph wrappers.
func jsonLDField(doc *goquery.Document, field string) string {
	var out string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw interface{}
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		if v := findField(raw, field); v != "" {
			out = v
			return false
		}
		return true
	})
	return out
}

func findField(node interface{}, field string) string {
	switch n := node.(type) {
	case map[string]interface{}:
		if v, ok := n[field].(string); ok && v != "" {
			return v
		}
		if graph, ok := n["@graph"]; ok {
			return findField(graph, field)
		}
	case []interface{}:
		for _, item := range n {
			if v := findField(item, field); v != "" {
				return v
			}
		}
	}
	return ""
}

// stripTags flattens embedded HTML (JSON-LD descriptions often carry markup).
func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}
	return cleanText(doc.Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
