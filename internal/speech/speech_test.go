package speech

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestExecSpeakerPassesTextOnStdin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "spoken.txt")
	script := writeScript(t, dir, "say.sh", "#!/usr/bin/env bash\nprintf '%s:' \"$1\" >> \""+out+"\"\ncat >> \""+out+"\"\nprintf '\\n' >> \""+out+"\"\n")

	speaker, err := NewExecSpeaker(script+" {lang}", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new speaker failed: %v", err)
	}
	speaker.Speak("hola", "es")
	speaker.Speak("  ", "es")
	speaker.Speak("bonjour", "fr")
	if err := speaker.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output failed: %v", err)
	}
	if got := string(data); got != "es:hola\nfr:bonjour\n" {
		t.Fatalf("unexpected spoken output: %q", got)
	}
}

func TestExecSpeakerTextPlaceholder(t *testing.T) {
	t.Parallel()

	args, viaStdin := expandArgs([]string{"espeak-ng", "-v", "{lang}", "{text}"}, utterance{text: "guten tag", lang: "de"})
	if viaStdin {
		t.Fatalf("expected text to be passed as an argument")
	}
	if strings.Join(args, "|") != "espeak-ng|-v|de|guten tag" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestExecSpeakerFailureIsSilent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := writeScript(t, dir, "fail.sh", "#!/usr/bin/env bash\necho nope 1>&2\nexit 3\n")
	speaker, err := NewExecSpeaker(script, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new speaker failed: %v", err)
	}
	speaker.Speak("text", "en")
	if err := speaker.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	speaker.Speak("after close", "en")
}

func TestNewExecSpeakerRejectsEmptyCommand(t *testing.T) {
	t.Parallel()

	if _, err := NewExecSpeaker("   ", nil); err == nil {
		t.Fatalf("expected empty command error")
	}
	if _, err := NewExecSpeaker(`say "unterminated`, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func writeScript(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
