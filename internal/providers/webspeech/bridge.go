package webspeech

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event names shared with the frontend bridge script.
const (
	EventProbe             = "recognition:probe"
	EventCapabilities      = "recognition:capabilities"
	EventPermissionRequest = "recognition:permission-request"
	EventPermission        = "recognition:permission"
	EventOpen              = "recognition:open"
	EventStarted           = "recognition:started"
	EventOpenFailed        = "recognition:open-failed"
	EventStop              = "recognition:stop"
	EventResult            = "recognition:result"
	EventError             = "recognition:error"
	EventEnd               = "recognition:end"
	EventSpeak             = "synthesis:speak"
)

// Bridge carries events between Go and the webview.
type Bridge interface {
	Emit(event string, payload any)
	On(event string, handler func(data ...any)) (cancel func())
}

// WailsBridge adapts the Wails runtime event bus. Subscriptions made before
// Bind are registered once the runtime context is available; emits before
// Bind are dropped.
type WailsBridge struct {
	mu      sync.Mutex
	ctx     context.Context
	pending []subscription
}

type subscription struct {
	event   string
	handler func(data ...any)
	cancel  func()
	removed bool
}

func NewWailsBridge() *WailsBridge {
	return &WailsBridge{}
}

// Bind attaches the bridge to the Wails runtime context from OnStartup.
func (b *WailsBridge) Bind(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = ctx
	for i := range b.pending {
		sub := &b.pending[i]
		if !sub.removed {
			sub.cancel = runtime.EventsOn(ctx, sub.event, sub.handler)
		}
	}
}

func (b *WailsBridge) Emit(event string, payload any) {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	if ctx == nil {
		return
	}
	runtime.EventsEmit(ctx, event, payload)
}

func (b *WailsBridge) On(event string, handler func(data ...any)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil {
		return runtime.EventsOn(b.ctx, event, handler)
	}
	b.pending = append(b.pending, subscription{event: event, handler: handler})
	index := len(b.pending) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub := &b.pending[index]
		sub.removed = true
		if sub.cancel != nil {
			sub.cancel()
		}
	}
}

// decodePayload converts the first event argument into out. The webview
// delivers objects as generic maps, so they are round-tripped through JSON.
func decodePayload(data []any, out any) error {
	if len(data) == 0 || data[0] == nil {
		return fmt.Errorf("empty event payload")
	}
	var raw []byte
	switch v := data[0].(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode event payload: %w", err)
		}
		raw = encoded
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode event payload: %w", err)
	}
	return nil
}
