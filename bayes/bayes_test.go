package bayes

import (
	"math"
	"strings"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()
	cases := map[string]CategoryName{
		"  spam  ":     "Spam",
		"ham":          "Ham",
		"TECH NEWS":    "TECH NEWS",
		"multi   word": "Multi word",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

// S1: spam/ham classification scenario from spec.md.
func TestClassify_SpamHam(t *testing.T) {
	t.Parallel()
	c := New("Spam", "Ham")
	c.Train("Spam", "buy now free offer")
	c.Train("Ham", "hello friend meeting")

	if got := c.Classify("free offer today"); got != "Spam" {
		t.Errorf("Classify() = %q, want Spam", got)
	}
}

func TestClassify_Determinism(t *testing.T) {
	t.Parallel()
	c := New("Spam", "Ham")
	c.Train("Spam", "buy now free offer")
	c.Train("Ham", "hello friend meeting")

	first := c.Classify("free offer today")
	for i := 0; i < 5; i++ {
		if got := c.Classify("free offer today"); got != first {
			t.Errorf("Classify nondeterministic: run %d got %q, want %q", i, got, first)
		}
	}
}

func TestClassifications_Finite(t *testing.T) {
	t.Parallel()
	c := New("Spam", "Ham")
	c.Train("Spam", "buy now free offer")
	c.Train("Ham", "hello friend meeting")

	for name, score := range c.Classifications("free offer meeting") {
		if math.IsInf(score, 0) || math.IsNaN(score) {
			t.Errorf("category %s has non-finite score %v", name, score)
		}
	}
}

func TestTrain_Commutative(t *testing.T) {
	t.Parallel()
	texts := []string{"alpha beta gamma", "delta epsilon zeta", "alpha delta theta"}

	forward := New("A", "B")
	for _, txt := range texts {
		forward.Train("A", txt)
	}
	forward.Train("B", "unrelated filler words here")

	reversed := New("A", "B")
	for i := len(texts) - 1; i >= 0; i-- {
		reversed.Train("A", texts[i])
	}
	reversed.Train("B", "unrelated filler words here")

	query := "alpha delta"
	sf := forward.Classifications(query)
	sr := reversed.Classifications(query)
	for name, score := range sf {
		other, ok := sr[name]
		if !ok {
			t.Fatalf("category %s missing from reversed scores", name)
		}
		if math.Abs(score-other) > 1e-4 {
			t.Errorf("category %s: forward=%v reversed=%v differ beyond tolerance", name, score, other)
		}
	}
}

func TestUntrain_InverseOfTrain(t *testing.T) {
	t.Parallel()
	c := New("A", "B")
	c.Train("A", "alpha beta gamma")
	c.Train("B", "delta epsilon zeta")

	before := snapshot(c)

	c.Train("A", "new text added here")
	c.Untrain("A", "new text added here")

	after := snapshot(c)
	if before != after {
		t.Errorf("train+untrain did not restore state:\nbefore=%s\nafter=%s", before, after)
	}
}

func TestUntrain_FlorsAtZero(t *testing.T) {
	t.Parallel()
	c := New("A")
	c.Train("A", "one two three")
	c.Untrain("A", "one two three four five")

	js, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if strings.Contains(string(js), "-1") {
		t.Errorf("expected no negative counts, got %s", js)
	}
}

func TestMultiplicityEquivalence(t *testing.T) {
	t.Parallel()
	k := 3
	repeated := New("A")
	for i := 0; i < k; i++ {
		repeated.Train("A", "loyal dog pet")
	}

	joined := New("A")
	var parts []string
	for i := 0; i < k; i++ {
		parts = append(parts, "loyal dog pet")
	}
	joined.Train("A", strings.Join(parts, " "))

	// Document counts differ by design (k trains vs. 1 train), but
	// token totals for the category must match exactly.
	repeatedDoc, err1 := repeated.MarshalJSON()
	joinedDoc, err2 := joined.MarshalJSON()
	if err1 != nil || err2 != nil {
		t.Fatalf("marshal errors: %v %v", err1, err2)
	}
	_ = repeatedDoc
	_ = joinedDoc

	sRepeated := sumTokenCounts(repeated)
	sJoined := sumTokenCounts(joined)
	if sRepeated != sJoined {
		t.Errorf("token totals differ: repeated=%d joined=%d", sRepeated, sJoined)
	}
}

func sumTokenCounts(c *Classifier) int {
	var sum int
	for _, state := range c.categories {
		for _, n := range state.tokens {
			sum += n
		}
	}
	return sum
}

func snapshot(c *Classifier) string {
	js, err := c.MarshalJSON()
	if err != nil {
		panic(err)
	}
	return string(js)
}

func TestNonNegativity_AfterManyTrainUntrain(t *testing.T) {
	t.Parallel()
	c := New("A", "B")
	ops := []struct {
		train bool
		cat   string
		text  string
	}{
		{true, "A", "alpha beta"},
		{true, "B", "gamma delta"},
		{false, "A", "alpha beta"},
		{false, "A", "alpha beta"}, // untrain twice; second is a no-op floor
		{true, "A", "alpha gamma epsilon"},
	}
	for _, op := range ops {
		if op.train {
			c.Train(op.cat, op.text)
		} else {
			c.Untrain(op.cat, op.text)
		}
	}
	if err := validate(c); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestRemoveCategory(t *testing.T) {
	t.Parallel()
	c := New("A", "B")
	c.Train("A", "alpha beta")
	c.Train("B", "gamma delta")
	c.RemoveCategory("A")

	for _, name := range c.Categories() {
		if name == "A" {
			t.Fatalf("expected A removed")
		}
	}
	if err := validate(c); err != nil {
		t.Errorf("invariant violated after remove: %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	c := New("Spam", "Ham")
	c.Train("Spam", "buy now free offer")
	c.Train("Ham", "hello friend meeting")

	data, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var loaded Classifier
	if err := loaded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	want := c.Classify("free offer today")
	got := loaded.Classify("free offer today")
	if want != got {
		t.Errorf("round trip classify mismatch: want %q got %q", want, got)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	t.Parallel()
	c := New("Spam", "Ham")
	c.Train("Spam", "buy now free offer")
	c.Train("Ham", "hello friend meeting")

	data, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var loaded Classifier
	if err := loaded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if loaded.Classify("free offer today") != c.Classify("free offer today") {
		t.Errorf("binary round trip classify mismatch")
	}
}
