// Package htmlutil has small helpers for working with parsed HTML
// nodes and the messy text the router embeds in them.
package htmlutil

import (
	"bytes"

	"golang.org/x/net/html"
)

// GetText concatenates every text node beneath node.
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
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

// Attr returns the value of the named attribute on node, or "".
func Attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Excerpt shortens s to at most max runes, appending an ellipsis when
// anything was cut. Used to quote offending markup in log messages
// without flooding them.
func Excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
