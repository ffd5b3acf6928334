package sheet

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	appLog "makersite/internal/log"
)

// Fetcher retrieves the spreadsheet CSV export over HTTP.
type Fetcher struct {
	client *http.Client
}

// FetchResult is one successful retrieval of the sheet.
type FetchResult struct {
	Body []byte
	// Hash is the md5 content fingerprint of Body, used by the change
	// gate to detect upstream edits without comparing full contents.
	Hash string
}

// NewFetcher creates a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var sheetIDRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// CSVExportURL rewrites a Google Sheets document URL into its CSV export
// form. Non-Sheets URLs (e.g. a direct CSV endpoint) pass through
// unchanged.
func CSVExportURL(sheetURL string) string {
	if !containsSpreadsheetHost(sheetURL) {
		return sheetURL
	}
	m := sheetIDRe.FindStringSubmatch(sheetURL)
	if m == nil {
		return sheetURL
	}
	return "https://docs.google.com/spreadsheets/d/" + m[1] + "/export?format=csv"
}

func containsSpreadsheetHost(u string) bool {
	const marker = "docs.google.com/spreadsheets"
	for i := 0; i+len(marker) <= len(u); i++ {
		if u[i:i+len(marker)] == marker {
			return true
		}
	}
	return false
}

// Fetch downloads the sheet CSV and computes its content fingerprint.
func (f *Fetcher) Fetch(ctx context.Context, sheetURL string) (FetchResult, error) {
	if sheetURL == "" {
		return FetchResult{}, errors.New("sheet: URL is empty")
	}

	csvURL := CSVExportURL(sheetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return FetchResult{}, err
	}

	appLog.Info("sheet fetch start", "url", csvURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, errors.New("sheet: unexpected status " + resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{
		Body: body,
		Hash: ContentHash(body),
	}
	appLog.Info("sheet fetch success", "bytes", len(body), "hash", res.Hash[:8])
	return res, nil
}

// ContentHash returns the md5 hex digest of the given content. md5 is
// fine here: the hash is an opaque change fingerprint, not a security
// boundary.
func ContentHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
