package webspeech

import "strings"

type speakRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Speaker hands utterances to speechSynthesis in the webview.
type Speaker struct {
	bridge Bridge
}

func NewSpeaker(bridge Bridge) *Speaker {
	return &Speaker{bridge: bridge}
}

func (s *Speaker) Speak(text string, languageCode string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.bridge.Emit(EventSpeak, speakRequest{Text: text, Lang: languageCode})
}
