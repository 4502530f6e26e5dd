package stream

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptReader serves one scripted chunk per Read and signals done on Close.
// The optional gate blocks the first Read until released, letting tests
// order cancellation before any data is delivered.
type scriptReader struct {
	chunks []string
	gate   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (r *scriptReader) Read(p []byte) (int, error) {
	if r.gate != nil {
		<-r.gate
	}
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *scriptReader) Close() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

type scriptTransport struct {
	reader  *scriptReader
	openErr error
	gotReq  Request
}

func (t *scriptTransport) Open(_ context.Context, req Request) (io.ReadCloser, error) {
	t.gotReq = req
	if t.openErr != nil {
		return nil, t.openErr
	}
	return t.reader, nil
}

// recorder collects callback invocations for assertion.
type recorder struct {
	mu         sync.Mutex
	chunks     []string
	structured []StructuredData
	completed  []string
	errs       []error
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnChunk: func(text string) {
			r.mu.Lock()
			r.chunks = append(r.chunks, text)
			r.mu.Unlock()
		},
		OnStructuredData: func(data StructuredData) {
			r.mu.Lock()
			r.structured = append(r.structured, data)
			r.mu.Unlock()
		},
		OnComplete: func(rendered string) {
			r.mu.Lock()
			r.completed = append(r.completed, rendered)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
	}
}

func runSession(t *testing.T, chunks []string) *recorder {
	t.Helper()
	done := make(chan struct{})
	tr := &scriptTransport{reader: &scriptReader{chunks: chunks, done: done}}
	rec := &recorder{}

	NewSession(tr, rec.callbacks(), nil).Start(context.Background(), Request{Content: "hi"})

	// Close 在最终回调之后才触发, done 关闭即代表全部回调已落盘
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("会话未在期限内结束")
	}
	return rec
}

func TestSessionEndToEnd(t *testing.T) {
	rec := runSession(t, []string{
		"data: {\"message\":\"好的，\"}\n",
		"data: {\"message\":\"推荐\"}\n",
		"data: {\"recommendation\":{\"name\":\"应用基础解决方案\",\"products\":[{\"id\":\"vm-basic\",\"quantity\":\"2\"}]},\"suggestions\":[\"能否升级?\"]}\n",
	})

	if got := strings.Join(rec.chunks, ""); got != "好的，推荐" {
		t.Errorf("增量文本拼接 = %q, 期望 %q", got, "好的，推荐")
	}
	if len(rec.completed) != 1 || rec.completed[0] != "好的，推荐" {
		t.Errorf("完成回调 = %v", rec.completed)
	}
	if len(rec.structured) == 0 {
		t.Fatal("未收到结构化数据")
	}
	data := rec.structured[0]
	if data.Bundle == nil || data.Bundle.Name != "应用基础解决方案" {
		t.Fatalf("Bundle = %+v", data.Bundle)
	}
	if len(data.Bundle.Products) != 1 || data.Bundle.Products[0].Quantity != 2 {
		t.Errorf("Products = %+v", data.Bundle.Products)
	}
	if !reflect.DeepEqual(data.Suggestions, []string{"能否升级?"}) {
		t.Errorf("Suggestions = %v", data.Suggestions)
	}
	if len(rec.errs) != 0 {
		t.Errorf("不应有错误: %v", rec.errs)
	}
}

// 同一字节流在不同切分下必须得到同样的最终结果。
func TestSessionChunkSplitIndependence(t *testing.T) {
	raw := "data: {\"message\":\"你好\"}\ndata: {\"message\":\"，世界\"}\ndata: {\"conversation_id\":\"conv-1\"}\n"

	for _, size := range []int{1, 3, 9, 1024} {
		rec := runSession(t, splitEvery(raw, size))
		if len(rec.completed) != 1 || rec.completed[0] != "你好，世界" {
			t.Errorf("切分 %d: 完成文本 = %v", size, rec.completed)
		}
		if len(rec.structured) == 0 || rec.structured[0].ConversationID != "conv-1" {
			t.Errorf("切分 %d: 结构化数据 = %v", size, rec.structured)
		}
		for _, c := range rec.chunks {
			if strings.HasPrefix(strings.TrimSpace(c), "{") {
				t.Errorf("切分 %d: 泄漏了原始 JSON 片段 %q", size, c)
			}
		}
	}
}

// 末尾没有换行的结构化帧也要被处理。
func TestSessionTrailingFrameWithoutNewline(t *testing.T) {
	rec := runSession(t, []string{
		"data: {\"message\":\"处理中\"}\n",
		"data: {\"suggestions\":[\"查看价格\"]}",
	})

	if len(rec.completed) != 1 || rec.completed[0] != "处理中" {
		t.Errorf("完成文本 = %v", rec.completed)
	}
	if len(rec.structured) == 0 || !reflect.DeepEqual(rec.structured[0].Suggestions, []string{"查看价格"}) {
		t.Errorf("结构化数据 = %v", rec.structured)
	}
}

// 末帧携带结构化数据时只回调一次, 收尾重放不得重复上报。
func TestSessionStructuredEmittedOnce(t *testing.T) {
	rec := runSession(t, []string{
		"data: {\"message\":\"好的\"}\n",
		"data: {\"recommendation\":{\"name\":\"应用基础解决方案\",\"products\":[]},\"conversation_id\":\"conv-9\"}\n",
	})

	if len(rec.structured) != 1 {
		t.Fatalf("结构化回调次数 = %d, 期望 1", len(rec.structured))
	}
	data := rec.structured[0]
	if data.Bundle == nil || data.Bundle.Name != "应用基础解决方案" {
		t.Errorf("Bundle = %+v", data.Bundle)
	}
	if data.ConversationID != "conv-9" {
		t.Errorf("ConversationID = %q", data.ConversationID)
	}
}

func TestSessionCancelSuppressesCallbacks(t *testing.T) {
	gate := make(chan struct{})
	done := make(chan struct{})
	tr := &scriptTransport{reader: &scriptReader{
		chunks: []string{"data: {\"message\":\"迟到的数据\"}\n"},
		gate:   gate,
		done:   done,
	}}
	rec := &recorder{}

	cancel := NewSession(tr, rec.callbacks(), nil).Start(context.Background(), Request{Content: "hi"})

	// 先取消, 再放行在途数据
	cancel()
	close(gate)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("会话未在期限内结束")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.chunks) != 0 || len(rec.structured) != 0 || len(rec.completed) != 0 || len(rec.errs) != 0 {
		t.Errorf("取消后仍有回调: chunks=%v structured=%v completed=%v errs=%v",
			rec.chunks, rec.structured, rec.completed, rec.errs)
	}
}

func TestSessionOpenError(t *testing.T) {
	wantErr := errors.New("connection refused")
	tr := &scriptTransport{openErr: wantErr}
	rec := &recorder{}

	NewSession(tr, rec.callbacks(), nil).Start(context.Background(), Request{Content: "hi"})

	deadline := time.After(2 * time.Second)
	for {
		rec.mu.Lock()
		n := len(rec.errs)
		rec.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("未收到错误回调")
		case <-time.After(10 * time.Millisecond):
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !errors.Is(rec.errs[0], wantErr) {
		t.Errorf("错误 = %v, 期望包装 %v", rec.errs[0], wantErr)
	}
	if len(rec.completed) != 0 {
		t.Errorf("打开失败不应触发完成回调: %v", rec.completed)
	}
}

func TestSessionForwardsRequest(t *testing.T) {
	done := make(chan struct{})
	tr := &scriptTransport{reader: &scriptReader{done: done}}
	rec := &recorder{}

	req := Request{Content: "需要一个数据库", ConversationID: "conv-3"}
	NewSession(tr, rec.callbacks(), nil).Start(context.Background(), req)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("会话未在期限内结束")
	}
	if tr.gotReq.Content != req.Content || tr.gotReq.ConversationID != req.ConversationID {
		t.Errorf("透传请求 = %+v, 期望 %+v", tr.gotReq, req)
	}
}

func TestCleanupRendered(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		wantSwap bool
	}{
		{
			name:     "残留 JSON 被替换为 message 值",
			text:     `{"message":"最终答复","conversation_id":"c1"}`,
			want:     "最终答复",
			wantSwap: true,
		},
		{
			name: "普通文本不动",
			text: "这是正常回复",
		},
		{
			name: "没有 message 键的 JSON 不动",
			text: `{"recommendation":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cleanupRendered(tt.text)
			if ok != tt.wantSwap {
				t.Fatalf("swap = %v, 期望 %v", ok, tt.wantSwap)
			}
			if ok && got != tt.want {
				t.Errorf("替换结果 = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestExtractTrailing(t *testing.T) {
	raw := "data: {\"message\":\"a\"}\ndata: {\"message\":\"b\"}\ndata: {\"suggestions\":[\"最后一条\"]}\n"
	data := extractTrailing(raw)
	if !reflect.DeepEqual(data.Suggestions, []string{"最后一条"}) {
		t.Errorf("Suggestions = %v", data.Suggestions)
	}

	if data := extractTrailing("data: 纯文本\n"); !data.Empty() {
		t.Errorf("纯文本流不应产出结构化数据: %+v", data)
	}
}
