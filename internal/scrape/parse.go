package scrape

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Categories are paragraph headings whose speeches take the heading as type
var Categories = []string{"um fundarstjórn", "óundirbúinn fyrirspurnatími"}

var (
	// date, weekday and session prefix before the speech type
	linkTypePattern = regexp.MustCompile(`(?:\S+ ){3}(?:kl\. \d{1,2}:\d{2} )?(.*)`)
	clockPattern    = regexp.MustCompile(`kl\. \d{1,2}:\d{2} (.*)`)
)

// TypedLink is a speech URL with the type scraped for it
type TypedLink struct {
	URL  string
	Type string
}

// ArticleLinks returns the hrefs of all anchors in the first
// div.article of the page, prefixed with prefix
func ArticleLinks(r io.Reader, prefix string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	article := findArticle(doc)
	if article == nil {
		return nil, nil
	}

	var links []string
	walk(article, func(n *html.Node) {
		if n.Data != "a" {
			return
		}
		if href, ok := attr(n, "href"); ok {
			links = append(links, prefix+href)
		}
	})
	return links, nil
}

// SpeechLinks walks the p and li elements of the first div.article in
// document order. A p sets the current heading (text after the last ")").
// Each li link gets the heading as type when the heading is one of the
// Categories, otherwise the type is parsed from the link text.
func SpeechLinks(r io.Reader, baseURL string) ([]TypedLink, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	article := findArticle(doc)
	if article == nil {
		return nil, nil
	}

	var (
		heading string
		links   []TypedLink
	)
	walk(article, func(n *html.Node) {
		switch n.Data {
		case "p":
			text := textOf(n)
			heading = text[strings.LastIndex(text, ")")+1:]
		case "li":
			a := firstElement(n, "a")
			if a == nil {
				return
			}
			href, ok := attr(a, "href")
			if !ok {
				return
			}
			typ := heading
			if !isCategory(heading) {
				typ = typeFromLinkText(textOf(a))
			}
			links = append(links, TypedLink{URL: baseURL + href, Type: typ})
		}
	})
	return links, nil
}

// CleanType strips a leading "kl. HH:MM " clock time from a speech type
func CleanType(text string) string {
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

func typeFromLinkText(text string) string {
	if m := linkTypePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.TrimSpace(text)
}

func isCategory(heading string) bool {
	for _, c := range Categories {
		if heading == c {
			return true
		}
	}
	return false
}

func findArticle(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "article") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findArticle(c); found != nil {
			return found
		}
	}
	return nil
}

// walk calls fn for every element below n in document order
func walk(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walk(c, fn)
	}
}

func firstElement(n *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) {
		if found == nil && c.Data == tag {
			found = c
		}
	})
	return found
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
