//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lvraikkonen/azure-calculator/internal/chat"
	"github.com/lvraikkonen/azure-calculator/internal/cli/client"
	"github.com/lvraikkonen/azure-calculator/internal/stream"
)

const (
	testUsername = "demo"
	testPassword = "secret"
	testToken    = "token-abc123"
)

// newBackend 模拟后端: 表单登录 + SSE 流式消息 + 对话列表。
// SSE 响应按小块多次 flush, 覆盖帧跨网络读的情况。
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/x-www-form-urlencoded") {
			t.Errorf("login content type = %q, want form-urlencoded", ct)
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostFormValue("username") != testUsername || r.PostFormValue("password") != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"用户名或密码错误"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer","user":{"id":"u-1","username":%q,"email":"demo@example.com"}}`,
			testToken, testUsername)
	})

	mux.HandleFunc("/api/v1/chat/messages/stream", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"未认证"}`)
			return
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}

		frames := []string{
			"data: {\"message\":\"好的，\"}\n\n",
			"data: {\"message\":\"为你推荐以下方案。\"}\n\n",
			"data: {\"conversation_id\":\"conv-42\"," +
				"\"recommendation\":{\"name\":\"Web 应用基础解决方案\"," +
				"\"products\":[{\"id\":\"app-service\",\"quantity\":1},{\"id\":\"sql-database\",\"quantity\":1}]}," +
				"\"suggestions\":[\"需要更大的规模吗?\"]}\n\n",
		}
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
			time.Sleep(10 * time.Millisecond)
		}
	})

	mux.HandleFunc("/api/v1/chat/conversations", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"未认证"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"conv-42","title":"新对话","lastMessagePreview":"好的，为你推荐以下方案。"}]`)
	})

	return httptest.NewServer(mux)
}

// TestChatStreamEndToEnd 完整走一遍真实 HTTP 链路:
// 登录 -> SSE 流式消息 -> 会话状态机 -> 对话列表。
func TestChatStreamEndToEnd(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 登录拿 token
	anon, err := client.NewAPIClient(backend.URL, "")
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	loginResp, err := anon.Login(ctx, testUsername, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginResp.AccessToken != testToken {
		t.Fatalf("access token = %q, want %q", loginResp.AccessToken, testToken)
	}

	authed, err := client.NewAPIClient(backend.URL, loginResp.AccessToken)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}

	// 流式消息, 回调驱动会话状态机
	manager := chat.NewManager()
	token := manager.BeginStream("帮我推荐一套 Web 应用方案")

	var structured []stream.StructuredData
	done := make(chan struct{})
	session := stream.NewSession(authed, stream.Callbacks{
		OnChunk: func(text string) {
			if err := manager.AppendChunk(token, text); err != nil {
				t.Errorf("AppendChunk: %v", err)
			}
		},
		OnStructuredData: func(data stream.StructuredData) {
			structured = append(structured, data)
			if data.ConversationID != "" {
				if err := manager.SetConversationID(token, data.ConversationID); err != nil {
					t.Errorf("SetConversationID: %v", err)
				}
			}
		},
		OnComplete: func(rendered string) {
			if err := manager.CompleteStream(token, rendered); err != nil {
				t.Errorf("CompleteStream: %v", err)
			}
			close(done)
		},
		OnError: func(err error) {
			t.Errorf("unexpected stream error: %v", err)
			close(done)
		},
	}, logger)
	session.Start(ctx, stream.Request{Content: "帮我推荐一套 Web 应用方案"})

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("stream did not complete in time")
	}

	conv, ok := manager.Current()
	if !ok {
		t.Fatal("no current conversation after stream")
	}
	if conv.ID != "conv-42" {
		t.Errorf("conversation id = %q, want conv-42", conv.ID)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(conv.Messages))
	}
	assistant := conv.Messages[1]
	if want := "好的，为你推荐以下方案。"; assistant.Content != want {
		t.Errorf("assistant content = %q, want %q", assistant.Content, want)
	}

	var gotBundle bool
	for _, data := range structured {
		if data.Bundle == nil {
			continue
		}
		gotBundle = true
		if data.Bundle.Name != "Web 应用基础解决方案" {
			t.Errorf("bundle name = %q", data.Bundle.Name)
		}
		if len(data.Bundle.Products) != 2 {
			t.Errorf("bundle products = %d, want 2", len(data.Bundle.Products))
		}
	}
	if !gotBundle {
		t.Error("no bundle extracted from stream")
	}

	// 对话列表
	summaries, err := authed.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "conv-42" {
		t.Errorf("summaries = %+v, want one entry conv-42", summaries)
	}
}

// TestChatStreamAuthRejected 未带 token 时流式接口返回 401, 错误回调收到 API 错误。
func TestChatStreamAuthRejected(t *testing.T) {
	backend := newBackend(t)
	defer backend.Close()

	anon, err := client.NewAPIClient(backend.URL, "")
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	session := stream.NewSession(anon, stream.Callbacks{
		OnComplete: func(string) { done <- nil },
		OnError:    func(err error) { done <- err },
	}, nil)
	session.Start(ctx, stream.Request{Content: "你好"})

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected auth error, stream completed")
		}
		if !strings.Contains(err.Error(), "未认证") {
			t.Errorf("error = %v, want detail 未认证", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no callback fired")
	}
}
