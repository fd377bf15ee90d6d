package horizons

import (
	"strings"
	"testing"
)

const sizeLimitBody = "Projected output length (~219147) exceeds 90024 line max -- change step-size"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want ResponseKind
	}{
		{"size limit", sizeLimitBody, KindSizeLimit},
		{"data", "header\n$$SOE\nrow\n$$EOE\ntrailer", KindData},
		{"error page", "No ephemeris for target prior to A.D. 1599", KindOther},
		{"misordered sentinels", "$$EOE\n$$SOE", KindOther},
	}
	for _, c := range cases {
		if got := Classify(c.text); got != c.want {
			t.Errorf("%s: Classify = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestExtractBlock(t *testing.T) {
	text := "API VERSION: 1.2\nlots of header text\n$$SOE\nrow one\n\n  row two  \n$$EOE\nfooter"
	lines, err := ExtractBlock(text)
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}
	if len(lines) != 2 || lines[0] != "row one" || lines[1] != "row two" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestExtractBlockMissingEndSentinel(t *testing.T) {
	text := "$$SOE\nrow one\nno terminator here"
	_, err := ExtractBlock(text)
	if err == nil {
		t.Fatal("expected error for missing $$EOE")
	}
	if !strings.Contains(err.Error(), "no terminator here") {
		t.Errorf("error should carry the response text, got: %v", err)
	}
}

func TestExtractBlockErrorPreviewIsBounded(t *testing.T) {
	long := strings.Repeat("x", 2000)
	_, err := ExtractBlock(long)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "...(truncated)...") {
		t.Errorf("expected truncation marker in error: %v", err)
	}
	if strings.Contains(err.Error(), strings.Repeat("x", 501)) {
		t.Error("preview exceeds the 500 character bound")
	}
}

func TestSpliceBlockRewrapsSection(t *testing.T) {
	text := "header\n$$SOE\nrow a\nrow b\n$$EOE\nfooter"
	spliced := spliceBlock(text)
	if spliced != "$$SOE\nrow a\nrow b\n$$EOE\n" {
		t.Fatalf("unexpected splice: %q", spliced)
	}
}

func TestSpliceBlockPassesThroughErrors(t *testing.T) {
	if got := spliceBlock(sizeLimitBody); got != sizeLimitBody {
		t.Fatalf("error text should pass through unmodified, got %q", got)
	}
}

func TestSplitSections(t *testing.T) {
	stitched := spliceBlock("$$SOE\na\n$$EOE") + spliceBlock("$$SOE\nb\n$$EOE")
	if SectionCount(stitched) != 2 {
		t.Fatalf("expected 2 sections, got %d", SectionCount(stitched))
	}
	sections := SplitSections(stitched)
	if len(sections) != 2 {
		t.Fatalf("expected 2 split sections, got %d", len(sections))
	}
	for i, sec := range sections {
		if _, err := ExtractBlock(sec); err != nil {
			t.Errorf("section %d not extractable: %v", i, err)
		}
	}
}

// Stitching two valid sections and re-extracting them must be transparent:
// the union of the halves equals the directly concatenated rows.
func TestStitchingIsTransparent(t *testing.T) {
	left := "header\n$$SOE\nrow 1\nrow 2\n$$EOE\n"
	right := "header\n$$SOE\nrow 3\n$$EOE\n"
	stitched := spliceBlock(left) + spliceBlock(right)

	var all []string
	for _, sec := range SplitSections(stitched) {
		lines, err := ExtractBlock(sec)
		if err != nil {
			t.Fatalf("ExtractBlock failed: %v", err)
		}
		all = append(all, lines...)
	}
	want := []string{"row 1", "row 2", "row 3"}
	if len(all) != len(want) {
		t.Fatalf("got %d rows, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, all[i], want[i])
		}
	}
}
