package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText renders the concatenated text content of a node subtree, the way
// a browser's textContent does.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Anchor is one link on a page: its cleaned visible text and its validated
// href.
type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// GetAnchors collects every anchor in the selection. Anchors whose href does
// not parse as a url are dropped.
func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			continue
		}

		name := GetText(n)
		name = removeNonPrintable(name)
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		anchors = append(anchors, Anchor{
			Name: name,
			Href: link.String(),
		})
	}

	return anchors
}

// MetaContent returns the content attribute of the first meta tag matching
// any of the given name/property values, tried in the order given.
func MetaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		content := ""
		doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			name, _ := sel.Attr("name")
			property, _ := sel.Attr("property")
			if name != key && property != key {
				return true
			}
			value, ok := sel.Attr("content")
			if !ok || strings.Trim(value, " \t\n") == "" {
				return true
			}
			content = value
			return false
		})
		if content != "" {
			return content
		}
	}
	return ""
}

// JsonLdBlocks returns the raw text of every ld+json script block on the
// page, in document order.
func JsonLdBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.Trim(sel.Text(), " \t\n")
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks
}
