package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/lvraikkonen/azure-calculator/internal/domain"
)

// readBufferSize is the transport read granularity. Frames routinely span
// reads; the decoder owns reassembly.
const readBufferSize = 4096

// Request is one outbound streamed chat exchange.
type Request struct {
	Content        string
	ConversationID string
	Context        map[string]interface{}
}

// Transport opens the streaming exchange and returns the raw response body.
// Implementations must honor ctx cancellation and surface non-2xx responses
// as errors.
type Transport interface {
	Open(ctx context.Context, req Request) (io.ReadCloser, error)
}

// Callbacks receive session events. The session invokes them sequentially
// from a single goroutine, so no callback ever runs concurrently with
// another, and none fires after Cancel returns.
type Callbacks struct {
	OnChunk          func(text string)
	OnStructuredData func(data StructuredData)
	OnComplete       func(rendered string)
	OnError          func(err error)
}

// Session owns one logical streamed request/response exchange. It drives the
// frame decoder and payload classifier over incoming data, accumulates the
// rendered text and performs the end-of-stream cleanup pass. A session is
// single-pass: no internal retries, callers start a new session instead.
type Session struct {
	transport Transport
	cb        Callbacks
	logger    *slog.Logger

	mu        sync.Mutex
	cancelled bool
	abort     context.CancelFunc
}

// NewSession creates a session bound to a transport and callback set.
func NewSession(transport Transport, cb Callbacks, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{transport: transport, cb: cb, logger: logger}
}

// Start opens the exchange and begins streaming. It returns immediately with
// a cancel handle; all results are delivered through the callbacks.
func (s *Session) Start(ctx context.Context, req Request) (cancel func()) {
	ctx, abort := context.WithCancel(ctx)
	s.mu.Lock()
	s.abort = abort
	s.mu.Unlock()

	go s.run(ctx, req)
	return s.Cancel
}

// Cancel aborts the underlying transport and suppresses every callback that
// has not yet fired. Cancellation is synchronous: once Cancel returns no
// further callback will be observed, even if network data is still in
// flight. Cancelling is not an error and never surfaces through OnError.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	if s.abort != nil {
		s.abort()
	}
}

func (s *Session) run(ctx context.Context, req Request) {
	body, err := s.transport.Open(ctx, req)
	if err != nil {
		if isAbort(ctx, err) {
			return
		}
		s.logger.Error("stream transport open failed", "error", err)
		s.emitError(err)
		return
	}
	defer body.Close()

	var (
		dec            FrameDecoder
		rendered       strings.Builder
		raw            strings.Builder
		structuredSeen bool
	)
	buf := make([]byte, readBufferSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			raw.WriteString(chunk)
			for _, frame := range dec.Feed(chunk) {
				s.handleFrame(frame, &rendered, &structuredSeen)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if isAbort(ctx, err) {
				return
			}
			s.logger.Error("stream read failed", "error", err)
			s.emitError(domain.NewTransportError(err))
			return
		}
	}

	if frame, ok := dec.Finish(); ok {
		s.handleFrame(frame, &rendered, &structuredSeen)
	}

	s.finish(rendered.String(), raw.String(), structuredSeen)
}

// handleFrame classifies one frame payload, appends any text fragment to the
// rendered buffer and forwards structured data to the extractor.
func (s *Session) handleFrame(frame Frame, rendered *strings.Builder, structuredSeen *bool) {
	c := ClassifyPayload(frame.Data)
	if c.HasText {
		rendered.WriteString(c.Text)
		s.emitChunk(c.Text)
	}
	if c.Structured {
		if data := ExtractStructured(c.Object); !data.Empty() {
			*structuredSeen = true
			s.emitStructured(data)
		}
	}
}

// finish performs the end-of-stream cleanup: if the accumulated rendered
// text still looks like a JSON object carrying a message key (the
// classifier may have let fragments through before enough data arrived),
// the text is replaced with just the extracted message. A trailing JSON
// object in the raw stream is then replayed through the extractor, covering
// structured data that arrived outside any recognized frame. The replay is
// skipped when a frame already yielded structured data, so each stream
// surfaces a structured payload at most once per source.
func (s *Session) finish(rendered, raw string, structuredSeen bool) {
	if cleaned, ok := cleanupRendered(rendered); ok {
		rendered = cleaned
	}

	if !structuredSeen {
		if data := extractTrailing(raw); !data.Empty() {
			s.emitStructured(data)
		}
	}

	s.emitComplete(rendered)
}

// cleanupRendered strips residual JSON artifacts from the final rendered
// text. Returns the replacement and true when the text resembled a JSON
// object with a message key.
func cleanupRendered(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.Contains(trimmed, `"message"`) {
		return "", false
	}
	c := ClassifyPayload(trimmed)
	if c.HasText {
		return c.Text, true
	}
	return "", false
}

// extractTrailing replays the last structured-data-bearing JSON object found
// in the accumulated raw stream through the extractor.
func extractTrailing(raw string) StructuredData {
	candidates := scanJSONObjects(raw)
	for i := len(candidates) - 1; i >= 0; i-- {
		c := ClassifyPayload(candidates[i])
		if c.Object == nil || !c.Structured {
			continue
		}
		if data := ExtractStructured(c.Object); !data.Empty() {
			return data
		}
	}
	return StructuredData{}
}

// isAbort distinguishes cancellation from genuine transport failure.
func isAbort(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || domain.IsCancelled(err)
}

func (s *Session) emitChunk(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.cb.OnChunk == nil {
		return
	}
	s.cb.OnChunk(text)
}

func (s *Session) emitStructured(data StructuredData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.cb.OnStructuredData == nil {
		return
	}
	s.cb.OnStructuredData(data)
}

func (s *Session) emitComplete(rendered string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.cb.OnComplete == nil {
		return
	}
	s.cb.OnComplete(rendered)
}

func (s *Session) emitError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.cb.OnError == nil {
		return
	}
	s.cb.OnError(err)
}
