// Package htmltomarkdown converts extracted page content to Markdown.
package htmltomarkdown

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/arachne"
)

// Ensure Converter implements arachne.Converter at compile time.
var _ arachne.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown. It is safe for concurrent use.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter with CommonMark and table support.
func NewConverter() *Converter {
	return &Converter{conv: converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)}
}

// Convert transforms HTML into Markdown. Relative links and images are made
// absolute using the scheme and host of pageURL.
func (c *Converter) Convert(html string, pageURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", arachne.Errorf(arachne.EINVALID, "empty HTML input")
	}

	var md string
	var err error
	if u, perr := url.Parse(pageURL); perr == nil && u.Host != "" {
		md, err = c.conv.ConvertString(html, converter.WithDomain(u.Scheme+"://"+u.Host))
	} else {
		md, err = c.conv.ConvertString(html)
	}
	if err != nil {
		return "", arachne.WrapError(arachne.EPROCESS, err, "convert HTML to markdown")
	}
	return strings.TrimSpace(md), nil
}
