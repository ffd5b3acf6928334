package sheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCSVExportURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			in:   "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit#gid=0",
			want: "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/export?format=csv",
		},
		{
			in:   "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/export?format=csv",
			want: "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/export?format=csv",
		},
		{
			// Direct CSV endpoints pass through untouched.
			in:   "https://example.com/events.csv",
			want: "https://example.com/events.csv",
		},
	}
	for _, tc := range cases {
		if got := CSVExportURL(tc.in); got != tc.want {
			t.Errorf("CSVExportURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash([]byte("hello"))
	b := ContentHash([]byte("hello"))
	c := ContentHash([]byte("hello!"))
	if a != b {
		t.Error("same content must hash identically")
	}
	if a == c {
		t.Error("different content must hash differently")
	}
	if len(a) != 32 {
		t.Errorf("hex digest length = %d, want 32", len(a))
	}
}

func TestParseRows(t *testing.T) {
	body := []byte("名称,場所,地域,から,まで,URL,備考\n" +
		"Maker Faire Tokyo,東京ビッグサイト,東京都,08/02,08/03,https://makezine.jp,big one\n" +
		",,,,,,\n" +
		"NT金沢,金沢駅,石川県,06/21\n")

	rows, err := ParseRows(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (all-empty row dropped)", len(rows))
	}

	if got := rows[0].Get(ColName); got != "Maker Faire Tokyo" {
		t.Errorf("name = %q", got)
	}
	if got := rows[0].Get(ColURL); got != "https://makezine.jp" {
		t.Errorf("url = %q", got)
	}

	// Ragged short row: missing trailing cells read as "".
	if got := rows[1].Get(ColDateTo); got != "" {
		t.Errorf("missing cell should be empty, got %q", got)
	}
	if got := rows[1].Get(ColDateFrom); got != "06/21" {
		t.Errorf("date_from = %q", got)
	}
}

func TestParseRowsEmptyBody(t *testing.T) {
	rows, err := ParseRows(nil)
	if err != nil {
		t.Fatal(err)
	}
	if rows != nil {
		t.Errorf("empty body should yield no rows, got %v", rows)
	}
}

func TestParseRowsTrimsHeaderWhitespace(t *testing.T) {
	body := []byte(" 名称 ,場所\nEvent,会場\n")
	rows, err := ParseRows(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if got := rows[0].Get(ColName); got != "Event" {
		t.Errorf("padded header column not usable: %q", got)
	}
}

func TestFetch(t *testing.T) {
	const payload = "名称,場所\nEvent,会場\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	res, err := NewFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Body) != payload {
		t.Errorf("body = %q", res.Body)
	}
	if res.Hash != ContentHash([]byte(payload)) {
		t.Error("hash must fingerprint the fetched body")
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("non-200 status should error")
	}
	if _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Error("empty URL should error")
	}
}
