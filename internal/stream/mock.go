package stream

import (
	"strings"
	"sync"
	"time"
)

// SimulateStream plays a canned chunk script through the same callback
// contract as a live session, with a fixed delay between chunks. Used when
// the persisted preference selects the simulated backend. The returned
// cancel func stops playback; as with a live session, no callback fires
// after it returns.
func SimulateStream(chunks []string, delay time.Duration, cb Callbacks) (cancel func()) {
	var (
		mu        sync.Mutex
		cancelled bool
	)

	emit := func(fn func()) bool {
		mu.Lock()
		defer mu.Unlock()
		if cancelled {
			return false
		}
		fn()
		return true
	}

	go func() {
		var full strings.Builder
		for _, chunk := range chunks {
			time.Sleep(delay)
			ok := emit(func() {
				full.WriteString(chunk)
				if cb.OnChunk != nil {
					cb.OnChunk(chunk)
				}
			})
			if !ok {
				return
			}
		}
		emit(func() {
			if cb.OnComplete != nil {
				cb.OnComplete(full.String())
			}
		})
	}()

	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
	}
}

// MockReplyChunks is the default simulated assistant reply for a user
// message, mirroring the development-mode script of the web client.
func MockReplyChunks(content string) []string {
	return []string{
		"我收到了你的消息",
		"：",
		"\"" + content + "\"",
		"。",
		"请问你的业务类型是什么？",
	}
}
