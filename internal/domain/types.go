package domain

import "time"

// CaptureState models the speech capture lifecycle.
type CaptureState string

const (
	CaptureStateIdle        CaptureState = "idle"
	CaptureStateRequesting  CaptureState = "requesting"
	CaptureStateListening   CaptureState = "listening"
	CaptureStateStopping    CaptureState = "stopping"
	CaptureStateError       CaptureState = "error"
	CaptureStateUnsupported CaptureState = "unsupported"
)

// CaptureReason provides a structured reason for Error and Unsupported states.
type CaptureReason string

const (
	CaptureReasonNone             CaptureReason = ""
	CaptureReasonUnsupported      CaptureReason = "unsupported"
	CaptureReasonPermissionDenied CaptureReason = "permission_denied"
	CaptureReasonOpenFailed       CaptureReason = "open_failed"
	CaptureReasonRestartFailed    CaptureReason = "restart_failed"
	CaptureReasonRecognition      CaptureReason = "recognition_error"
)

// CaptureStatus is the UI-visible snapshot of the capture engine.
type CaptureStatus struct {
	State     CaptureState  `json:"state"`
	Reason    CaptureReason `json:"reason,omitempty"`
	Message   string        `json:"message,omitempty"`
	Listening bool          `json:"listening"`
	Language  string        `json:"language,omitempty"`
	Restarts  int           `json:"restarts"`
}

// ResultSegment is one recognized span of speech.
type ResultSegment struct {
	Text  string `json:"transcript"`
	Final bool   `json:"isFinal"`
}

// RecognitionResult is one batch of segments delivered by a recognition session.
// Segments before ResultIndex were already finalized by earlier batches.
type RecognitionResult struct {
	ResultIndex int             `json:"resultIndex"`
	Segments    []ResultSegment `json:"results"`
}

// RecognitionErrorCode mirrors the error codes reported by platform recognizers.
type RecognitionErrorCode string

const (
	RecognitionErrorNoSpeech             RecognitionErrorCode = "no-speech"
	RecognitionErrorAborted              RecognitionErrorCode = "aborted"
	RecognitionErrorAudioCapture         RecognitionErrorCode = "audio-capture"
	RecognitionErrorNetwork              RecognitionErrorCode = "network"
	RecognitionErrorNotAllowed           RecognitionErrorCode = "not-allowed"
	RecognitionErrorServiceNotAllowed    RecognitionErrorCode = "service-not-allowed"
	RecognitionErrorBadGrammar           RecognitionErrorCode = "bad-grammar"
	RecognitionErrorLanguageNotSupported RecognitionErrorCode = "language-not-supported"
)

// Transient reports whether the error is expected steady-state noise.
func (c RecognitionErrorCode) Transient() bool {
	return c == RecognitionErrorNoSpeech
}

// RecognitionError is an error reported by an open recognition session.
type RecognitionError struct {
	Code    RecognitionErrorCode `json:"error"`
	Message string               `json:"message,omitempty"`
}

func (e RecognitionError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// TranslationRequest is one user-initiated translation.
type TranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// TranslationResult is a successful translation.
type TranslationResult struct {
	TranslatedText     string `json:"translatedText"`
	DetectedSourceLang string `json:"detectedSourceLang"`
}

// TranslationPhase identifies the progress of a translation request.
type TranslationPhase string

const (
	TranslationPhaseTranslating TranslationPhase = "translating"
	TranslationPhaseDone        TranslationPhase = "done"
	TranslationPhaseFailed      TranslationPhase = "failed"
)

// TranslationUpdate reports translation progress to the UI.
type TranslationUpdate struct {
	Phase   TranslationPhase   `json:"phase"`
	Request TranslationRequest `json:"request"`
	Result  *TranslationResult `json:"result,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// HistoryEntry is one completed translation kept in the in-memory history.
type HistoryEntry struct {
	Original     string    `json:"original"`
	Translated   string    `json:"translated"`
	SourceLang   string    `json:"sourceLang"`
	DetectedLang string    `json:"detectedLang,omitempty"`
	TargetLang   string    `json:"targetLang"`
	CreatedAt    time.Time `json:"createdAt"`
}
