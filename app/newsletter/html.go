package newsletter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTextLength is the least amount of visible text a generated document must carry
const MinTextLength = 200

// ValidateHTML rejects empty or implausibly short documents
func ValidateHTML(html string) error {
	if strings.TrimSpace(html) == "" {
		return fmt.Errorf("%w: empty document", ErrInvalidHTML)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHTML, err)
	}

	body := doc.Find("body")
	if body.Length() == 0 || body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "" {
		return fmt.Errorf("%w: document has no body content", ErrInvalidHTML)
	}

	body.Find("script, style").Remove()
	text := strings.Join(strings.Fields(body.Text()), " ")
	if n := utf8.RuneCountInString(text); n < MinTextLength {
		return fmt.Errorf("%w: %d characters of text, need at least %d", ErrInvalidHTML, n, MinTextLength)
	}

	return nil
}

// Slug turns a title into a file name stem
func Slug(title string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		stripped = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	if slug == "" {
		return "newsletter"
	}
	return slug
}
