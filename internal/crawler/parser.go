package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts anchors and visible text from HTML.
//
// Design decision: the parser returns raw href values and leaves resolution
// to Resolver, so one place owns the link rules for the whole crawl.
type Parser struct{}

// ParseResult is what a crawl needs from one HTML page.
type ParseResult struct {
	// Title is the text of the <title> element.
	Title string

	// Links are raw href values of <a> and <area> elements in document order.
	Links []string

	// Text is the visible text of the page, one space between text nodes.
	// Script, style and template contents are skipped. Comments are not text.
	Text string
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// skippedElements hold content that is never rendered as text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Parse reads an HTML document.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a", "area":
				if href, ok := getAttr(n, "href"); ok {
					result.Links = append(result.Links, href)
				}
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(t)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Text = text.String()
	return result, nil
}

// getAttr returns the value of an attribute and whether it is present.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}
