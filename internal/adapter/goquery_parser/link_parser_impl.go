package goquery_parser

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// LinkParser collects the href attribute of every element that has one:
// anchors, link tags, areas and base.
type LinkParser struct{}

func NewLinkParser() *LinkParser {
	return &LinkParser{}
}

// ParseLinks returns href values in document order, unnormalized and
// possibly repeated.
func (p *LinkParser) ParseLinks(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links, nil
}
