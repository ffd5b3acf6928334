package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ImageSource looks up a representative image URL for an event page.
// The production implementation scrapes OGP metadata; tests substitute
// a fake.
type ImageSource interface {
	ExtractImageURL(ctx context.Context, pageURL string) (string, error)
}

// OGPImageSource fetches an event page and extracts, in priority order:
// og:image, twitter:image, then the favicon. One best-effort lookup per
// page, no crawling.
type OGPImageSource struct {
	client *http.Client
}

const lookupUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// responseBodyCap bounds how much of a page we read while hunting for
// <head> metadata.
const responseBodyCap = 1 << 20

// NewOGPImageSource builds a source with the given per-request timeout.
func NewOGPImageSource(timeout time.Duration) *OGPImageSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OGPImageSource{
		client: &http.Client{Timeout: timeout},
	}
}

// ExtractImageURL fetches pageURL and returns the best candidate image
// URL, resolved to absolute form. Failure returns an error; callers are
// expected to fail closed to an empty image.
func (s *OGPImageSource) ExtractImageURL(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" || !strings.HasPrefix(pageURL, "http") {
		return "", errors.New("ogp: not an http(s) URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", lookupUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("ogp: unexpected status " + resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyCap))
	if err != nil {
		return "", err
	}

	candidate := pickImageURL(body)
	if candidate == "" {
		return "", errors.New("ogp: no image metadata found")
	}

	return absolutize(pageURL, candidate), nil
}

// pickImageURL tokenizes the page and applies the priority order. The
// tokenizer tolerates the malformed markup real event pages ship.
func pickImageURL(body []byte) string {
	var ogImage, twitterImage, favicon string

	z := html.NewTokenizer(strings.NewReader(string(body)))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		switch tok.Data {
		case "meta":
			prop, name, content := metaAttrs(tok)
			if content == "" {
				continue
			}
			if prop == "og:image" && ogImage == "" {
				ogImage = content
			}
			if name == "twitter:image" && twitterImage == "" {
				twitterImage = content
			}
		case "link":
			rel, href := linkAttrs(tok)
			if favicon == "" && href != "" && (rel == "icon" || rel == "shortcut icon") {
				favicon = href
			}
		case "body":
			// Metadata lives in <head>; stop once the body starts.
			if ogImage != "" || twitterImage != "" || favicon != "" {
				return firstNonEmpty(ogImage, twitterImage, favicon)
			}
		}
	}

	return firstNonEmpty(ogImage, twitterImage, favicon)
}

func metaAttrs(tok html.Token) (prop, name, content string) {
	for _, a := range tok.Attr {
		switch a.Key {
		case "property":
			prop = a.Val
		case "name":
			name = a.Val
		case "content":
			content = a.Val
		}
	}
	return prop, name, content
}

func linkAttrs(tok html.Token) (rel, href string) {
	for _, a := range tok.Attr {
		switch a.Key {
		case "rel":
			rel = strings.ToLower(a.Val)
		case "href":
			href = a.Val
		}
	}
	return rel, href
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// absolutize resolves candidate against the page URL when it is
// relative ("/img/ogp.png").
func absolutize(pageURL, candidate string) string {
	cu, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	if cu.IsAbs() {
		return candidate
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return candidate
	}
	return base.ResolveReference(cu).String()
}
