package textpipe

// Stem reduces a lowercase ASCII word to its Porter (1980) root.
// Behavior on non-ASCII-letter or mixed-case input is undefined by
// the algorithm; callers must lowercase and filter beforehand, which
// CleanWordHash and TokenizeOrdered already do.
func Stem(word string) string {
	w := []byte(word)
	if len(w) <= 2 {
		return word
	}

	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return string(w)
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// isConsonant reports whether w[i] is a consonant, treating 'y' as a
// consonant only when preceded by a vowel.
func isConsonant(w []byte, i int) bool {
	c := w[i]
	if isVowel(c) {
		return false
	}
	if c == 'y' {
		if i == 0 {
			return true
		}
		return !isConsonant(w, i-1)
	}
	return true
}

// measure computes Porter's m: the number of consonant-vowel-sequence
// transitions in w, treating it as [C](VC){m}[V].
func measure(w []byte) int {
	m := 0
	i := 0
	n := len(w)
	for i < n && isConsonant(w, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(w, i) {
			i++
		}
		if i >= n {
			break
		}
		for i < n && isConsonant(w, i) {
			i++
		}
		m++
	}
	return m
}

func containsVowel(w []byte) bool {
	for i := range w {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

func endsWithDoubleConsonant(w []byte) bool {
	n := len(w)
	if n < 2 {
		return false
	}
	a, b := w[n-1], w[n-2]
	return a == b && isConsonant(w, n-1) && isConsonant(w, n-2)
}

// endsCVC reports whether w ends consonant-vowel-consonant where the
// final consonant is not w, x, or y — Porter's *o condition.
func endsCVC(w []byte) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if !isConsonant(w, n-3) || isConsonant(w, n-2) || !isConsonant(w, n-1) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w []byte, suf string) bool {
	return len(w) >= len(suf) && string(w[len(w)-len(suf):]) == suf
}

func trimSuffix(w []byte, suf string) []byte {
	return w[:len(w)-len(suf)]
}

// replaceSuffix replaces suf with repl only if, after stripping suf,
// the stem satisfies cond (or cond is nil).
func replaceSuffix(w []byte, suf, repl string, cond func([]byte) bool) ([]byte, bool) {
	if !hasSuffix(w, suf) {
		return w, false
	}
	stem := trimSuffix(w, suf)
	if cond != nil && !cond(stem) {
		return w, false
	}
	return append(append([]byte{}, stem...), repl...), true
}

func step1a(w []byte) []byte {
	switch {
	case hasSuffix(w, "sses"):
		return append(trimSuffix(w, "sses"), "ss"...)
	case hasSuffix(w, "ies"):
		return append(trimSuffix(w, "ies"), "i"...)
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s") && len(w) > 2:
		// SSES, IES, and SS endings are already handled above, so any
		// word reaching here ending in "s" loses it unconditionally
		// (cats -> cat), matching Porter's reference stemmer.c.
		return trimSuffix(w, "s")
	}
	return w
}

func step1b(w []byte) []byte {
	var stem []byte
	var matched string
	switch {
	case hasSuffix(w, "eed"):
		s := trimSuffix(w, "eed")
		if measure(s) > 0 {
			return append(s, "ee"...)
		}
		return w
	case hasSuffix(w, "ed"):
		stem = trimSuffix(w, "ed")
		matched = "ed"
	case hasSuffix(w, "ing"):
		stem = trimSuffix(w, "ing")
		matched = "ing"
	default:
		return w
	}
	if matched != "" && !containsVowel(stem) {
		return w
	}
	w = stem
	switch {
	case hasSuffix(w, "at"), hasSuffix(w, "bl"), hasSuffix(w, "iz"):
		return append(w, "e"...)
	case endsWithDoubleConsonant(w) && !hasSuffix(w, "l") && !hasSuffix(w, "s") && !hasSuffix(w, "z"):
		return w[:len(w)-1]
	case measure(w) == 1 && endsCVC(w):
		return append(w, "e"...)
	}
	return w
}

func step1c(w []byte) []byte {
	if hasSuffix(w, "y") && containsVowel(trimSuffix(w, "y")) {
		return append(trimSuffix(w, "y"), "i"...)
	}
	return w
}

var step2Suffixes = []struct{ suf, repl string }{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
	{"logi", "log"},
}

func step2(w []byte) []byte {
	for _, r := range step2Suffixes {
		if nw, ok := replaceSuffix(w, r.suf, r.repl, func(s []byte) bool { return measure(s) > 0 }); ok {
			return nw
		}
	}
	return w
}

var step3Suffixes = []struct{ suf, repl string }{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func step3(w []byte) []byte {
	for _, r := range step3Suffixes {
		if nw, ok := replaceSuffix(w, r.suf, r.repl, func(s []byte) bool { return measure(s) > 0 }); ok {
			return nw
		}
	}
	return w
}

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement",
	"ment", "ent", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(w []byte) []byte {
	if hasSuffix(w, "ion") {
		stem := trimSuffix(w, "ion")
		if measure(stem) > 1 && (hasSuffix(stem, "s") || hasSuffix(stem, "t")) {
			return stem
		}
	}
	for _, suf := range step4Suffixes {
		if nw, ok := replaceSuffix(w, suf, "", func(s []byte) bool { return measure(s) > 1 }); ok {
			return nw
		}
	}
	return w
}

func step5a(w []byte) []byte {
	if hasSuffix(w, "e") {
		stem := trimSuffix(w, "e")
		m := measure(stem)
		if m > 1 || (m == 1 && !endsCVC(stem)) {
			return stem
		}
	}
	return w
}

func step5b(w []byte) []byte {
	if measure(w) > 1 && endsWithDoubleConsonant(w) && hasSuffix(w, "l") {
		return w[:len(w)-1]
	}
	return w
}
