package textpipe

import "testing"

func TestWordHash_PunctuationAsOwnToken(t *testing.T) {
	t.Parallel()
	freq := WordHash("Hello, world!")
	if freq[Token(",")] != 1 {
		t.Errorf("expected comma as its own token, got %v", freq)
	}
	if freq[Token("!")] != 1 {
		t.Errorf("expected bang as its own token, got %v", freq)
	}
	if freq[Token("hello")] != 1 || freq[Token("world")] != 1 {
		t.Errorf("expected hello/world counted, got %v", freq)
	}
}

func TestWordHash_CaseInsensitive(t *testing.T) {
	t.Parallel()
	freq := WordHash("Go go GO")
	if freq[Token("go")] != 3 {
		t.Errorf("expected go=3, got %v", freq)
	}
}

func TestCleanWordHash_DropsShortAndLongTokens(t *testing.T) {
	t.Parallel()
	long := ""
	for i := 0; i < 30; i++ {
		long += "x"
	}
	freq := CleanWordHash("a an "+long+" cats", LangEnglish)
	if _, ok := freq[Token(long)]; ok {
		t.Errorf("expected overlong token dropped")
	}
	if len(freq) == 0 {
		t.Fatalf("expected at least one surviving token, got %v", freq)
	}
}

func TestCleanWordHash_DropsStopwordsBeforeStemming(t *testing.T) {
	t.Parallel()
	freq := CleanWordHash("the quick brown fox", LangEnglish)
	if _, ok := freq[Token("the")]; ok {
		t.Errorf("expected stopword 'the' dropped")
	}
	if len(freq) == 0 {
		t.Fatalf("expected remaining tokens, got %v", freq)
	}
}

func TestCleanWordHash_NonLetterBecomesSeparator(t *testing.T) {
	t.Parallel()
	a := CleanWordHash("running-shoes", LangEnglish)
	b := CleanWordHash("running shoes", LangEnglish)
	if len(a) != len(b) {
		t.Errorf("expected punctuation and whitespace to behave as equivalent separators: %v vs %v", a, b)
	}
}

func TestTokenizeOrdered_PreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()
	toks := TokenizeOrdered("running runners running", LangEnglish)
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens preserved in order, got %v", toks)
	}
	if toks[0] != toks[2] {
		t.Errorf("expected repeated stem to match: %v", toks)
	}
}

func TestTokenizeOrdered_MatchesCleanWordHashVocabulary(t *testing.T) {
	t.Parallel()
	text := "dogs are loyal pets and dogs love people"
	ordered := TokenizeOrdered(text, LangEnglish)
	hashed := CleanWordHash(text, LangEnglish)

	counts := make(map[Token]int)
	for _, tok := range ordered {
		counts[tok]++
	}
	for tok, n := range counts {
		if hashed[tok] != n {
			t.Errorf("token %q: ordered count %d != hash count %d", tok, n, hashed[tok])
		}
	}
}

func TestFrequencies_AddFloorsAtZero(t *testing.T) {
	t.Parallel()
	f := make(Frequencies)
	f.Add("x", 2)
	f.Add("x", -5)
	if _, ok := f["x"]; ok {
		t.Errorf("expected token removed once count reaches zero, got %v", f)
	}
}
