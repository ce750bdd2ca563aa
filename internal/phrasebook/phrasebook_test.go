package phrasebook

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestLoadAppliesRulesAndSubstitutions(t *testing.T) {
	t.Parallel()

	path := writePhrasebook(t, `
rules:
  - "pull request => PR"
  - 's/\bdeep\s*gram\b/Deepgram/g'
substitutions:
  - match: "par rot"
    replace: "parrot"
  - pattern: '\bok(ay)?\b'
    replace: "OK"
    global: true
`)

	book, err := Load(path, 0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if book.Len() != 4 {
		t.Fatalf("expected 4 rules, got %d", book.Len())
	}

	got := book.Apply("okay deep gram, open the pull request in par rot ok")
	if got != "OK Deepgram, open the PR in parrot OK" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestApplyIteratesUntilStable(t *testing.T) {
	t.Parallel()

	book, err := Parse([]byte("rules:\n  - a => b\n  - b => c\n"), 5, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := book.Apply("a"); got != "c" {
		t.Fatalf("expected c, got %q", got)
	}
}

func TestApplyStopsAtLoopLimit(t *testing.T) {
	t.Parallel()

	book, err := Parse([]byte("rules:\n  - x => xx\n"), 3, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := book.Apply("x"); got != "xxxxxxxx" {
		t.Fatalf("expected three doublings, got %q", got)
	}
}

func TestLiteralRuleStartingWithS(t *testing.T) {
	t.Parallel()

	book, err := Parse([]byte("rules:\n  - solid complaint => SOLID-compliant\n"), 0, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := book.Apply("solid complaint plan"); got != "SOLID-compliant plan" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestSedRuleWithoutGlobalReplacesFirstMatchOnly(t *testing.T) {
	t.Parallel()

	r, err := parseLine(`s/fo(o)/ba$1/`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	output, changed := r.apply("foo foo")
	if !changed || output != "bao foo" {
		t.Fatalf("unexpected output: %q changed=%v", output, changed)
	}
}

func TestSedRuleEscapedDelimiter(t *testing.T) {
	t.Parallel()

	r, err := parseLine(`s/and\/or/and or/g`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if output, _ := r.apply("this and/or that"); output != "this and or that" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestCaseSensitiveMatch(t *testing.T) {
	t.Parallel()

	book, err := Parse([]byte("substitutions:\n  - match: US\n    replace: United States\n    case_sensitive: true\n"), 0, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := book.Apply("tell us about the US"); got != "tell us about the United States" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unsupported line": "rules:\n  - not-a-rule\n",
		"bad flag":         "rules:\n  - s/foo/bar/x\n",
		"unterminated":     "rules:\n  - s/foo/bar\n",
		"both fields":      "substitutions:\n  - match: a\n    pattern: b\n",
		"neither field":    "substitutions:\n  - replace: a\n",
		"bad pattern":      "substitutions:\n  - pattern: '('\n",
		"bad yaml":         "rules: [",
	}
	for name, contents := range cases {
		if _, err := Parse([]byte(contents), 0, nil); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	book, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.Len() != 0 || book.Apply("same") != "same" {
		t.Fatalf("expected empty phrasebook")
	}

	empty, err := Load("", 0, nil)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("expected empty phrasebook for empty path, err=%v", err)
	}
}

func writePhrasebook(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phrasebook.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write phrasebook: %v", err)
	}
	return path
}
