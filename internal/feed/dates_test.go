package feed

import (
	"testing"
	"time"
)

func TestResolveDateFullForm(t *testing.T) {
	// A year-qualified fragment parses independent of context.
	for _, ctx := range []YearContext{{}, {Year: 2019}} {
		got, ok := ResolveDate("2025/08/02", ctx, time.UTC)
		if !ok {
			t.Fatalf("expected 2025/08/02 to resolve under ctx=%v", ctx)
		}
		want := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestResolveDateFragmentUsesContext(t *testing.T) {
	got, ok := ResolveDate("08/02", YearContext{Year: 2025}, time.UTC)
	if !ok {
		t.Fatal("expected 08/02 to resolve under year 2025")
	}
	want := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolveDateUnpaddedComponents(t *testing.T) {
	got, ok := ResolveDate("8/2", YearContext{Year: 2025}, time.UTC)
	if !ok {
		t.Fatal("expected 8/2 to resolve")
	}
	if got.Month() != time.August || got.Day() != 2 {
		t.Errorf("got %v, want August 2", got)
	}
}

func TestResolveDateMalformed(t *testing.T) {
	cases := []string{"", "未定", "13/45", "2025/13/01", "08/02/extra/parts"}
	for _, frag := range cases {
		if _, ok := ResolveDate(frag, YearContext{Year: 2025}, time.UTC); ok {
			t.Errorf("fragment %q should not resolve", frag)
		}
	}
}

func TestResolveDateNoContext(t *testing.T) {
	// A month/day fragment with no year context cannot resolve.
	if _, ok := ResolveDate("08/02", YearContext{}, time.UTC); ok {
		t.Error("fragment without context should not resolve")
	}
}

func TestResolveRangeInvertedRetained(t *testing.T) {
	// date_to earlier than date_from comes back as given; no reordering
	// happens at this layer.
	from, to := ResolveRange("08/10", "08/02", YearContext{Year: 2025}, time.UTC)
	if from == nil || to == nil {
		t.Fatal("both ends should resolve")
	}
	if !to.Before(*from) {
		t.Errorf("inverted range was reordered: from=%v to=%v", from, to)
	}
}

func TestResolveRangePartial(t *testing.T) {
	from, to := ResolveRange("08/02", "", YearContext{Year: 2025}, time.UTC)
	if from == nil {
		t.Fatal("from should resolve")
	}
	if to != nil {
		t.Errorf("empty to fragment should stay nil, got %v", to)
	}
}
