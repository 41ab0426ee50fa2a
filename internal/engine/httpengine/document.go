package httpengine

import (
	"bytes"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// document is a parsed page.
type document struct {
	URL   string
	Title string
	Text  []string
}

var textPolicy = bluemonday.StrictPolicy()

// isPage reports whether resp should be shown rather than downloaded.
func isPage(resp *response) bool {
	if disposition, _, err := parseDisposition(resp.Disposition); err == nil && disposition == "attachment" {
		return false
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(resp.Body).String()
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = mimetype.Detect(resp.Body).String()
		mediaType, _, _ = mime.ParseMediaType(mediaType)
	}

	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	default:
		return false
	}
}

// detectCharset returns the declared charset, or a detected one.
func detectCharset(contentType string, body []byte) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil && params["charset"] != "" {
		return strings.ToLower(params["charset"])
	}
	if _, name, certain := charset.DetermineEncoding(body, contentType); certain {
		return name
	}

	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// toUTF8 decodes body from its charset.
func toUTF8(contentType string, body []byte) []byte {
	name := detectCharset(contentType, body)
	if name == "utf-8" {
		return body
	}

	reader, err := charset.NewReaderLabel(name, bytes.NewReader(body))
	if err != nil {
		return body
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return body
	}
	return buf.Bytes()
}

// parseDocument extracts the title and visible text of a page.
func parseDocument(resp *response) (*document, error) {
	body := toUTF8(resp.ContentType, resp.Body)
	doc := &document{URL: resp.URL}

	mediaType, _, _ := mime.ParseMediaType(resp.ContentType)
	if mediaType == "text/plain" {
		doc.Text = splitLines(string(body))
		return doc, nil
	}

	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	doc.Title = parsed.Find("title").First().Text()
	if meta, ok := parsed.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(doc.Title) == "" {
		doc.Title = meta
	}
	doc.Title = cleanTitle(doc.Title)

	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	doc.Text = visibleText(root)
	return doc, nil
}

// cleanTitle strips markup some sites put into titles.
func cleanTitle(title string) string {
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(title))), " ")
}

// visibleText returns the text nodes of the body, skipping scripts and
// styles.
func visibleText(root *html.Node) []string {
	var lines []string
	for _, node := range htmlquery.Find(root, "//body//text()[not(ancestor::script) and not(ancestor::style)]") {
		text := strings.TrimSpace(node.Data)
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// countMatches counts case-insensitive occurrences of needle.
func (d *document) countMatches(needle string) int {
	if d == nil || needle == "" {
		return 0
	}
	needle = strings.ToLower(needle)

	count := 0
	for _, line := range d.Text {
		count += strings.Count(strings.ToLower(line), needle)
	}
	return count
}

func parseDisposition(disposition string) (string, map[string]string, error) {
	return mime.ParseMediaType(disposition)
}
