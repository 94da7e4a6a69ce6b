package sentences

import (
	"context"
	"reflect"
	"testing"
)

func TestSplit_Basic(t *testing.T) {
	got := Split("First sentence. Second sentence! Third sentence? Fourth.")
	if len(got) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %#v", len(got), got)
	}
}

func TestSplit_MainIdeaAndDetail(t *testing.T) {
	got := Split("This is the main idea. Supporting detail.")
	want := []string{"This is the main idea.", "Supporting detail."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSplit_AbbreviationsAndDecimals(t *testing.T) {
	got := Split("Mr. Smith measured 3.14 meters. Dr. Jones agreed.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
}

func TestSplit_Ellipsis(t *testing.T) {
	got := Split("Wait... really? Yes.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
	if got[0] != "Wait... really?" {
		t.Fatalf("unexpected first sentence: %q", got[0])
	}
}

func TestSplit_ClosingQuote(t *testing.T) {
	got := Split(`He said "Stop." Then he left.`)
	want := []string{`He said "Stop."`, "Then he left."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSplit_LowercaseContinuation(t *testing.T) {
	got := Split("Use approx. values here. Done.")
	want := []string{"Use approx. values here.", "Done."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSplit_CollapsesWhitespace(t *testing.T) {
	got := Split("Line one\nwraps here.\n\nLine  two.")
	want := []string{"Line one wraps here.", "Line two."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSplit_Empty(t *testing.T) {
	if got := Split("   \n\t "); len(got) != 0 {
		t.Fatalf("expected no sentences, got %#v", got)
	}
}

func TestSplitter_Capability(t *testing.T) {
	got, err := New().Split(context.Background(), "One. Two.")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %#v", got)
	}
}
