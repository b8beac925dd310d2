package document

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Readable extracts the main article of src and returns it as a complete
// HTML document with the article title.
func Readable(src, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		u = &url.URL{Scheme: "http", Host: "localhost", Path: "/"}
	}

	article, err := readability.FromReader(strings.NewReader(src), u)
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", fmt.Errorf("failed to extract readable content: empty article")
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(strings.TrimSpace(article.Title)))
	b.WriteString("</title></head><body>")
	b.WriteString(article.Content)
	b.WriteString("</body></html>")
	return b.String(), nil
}
