package types

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestMessageRequestSerializesContext(t *testing.T) {
	req := NewMessageRequest("帮我推荐方案", "conv-1")
	req.Context = map[string]interface{}{"business_type": "data"}

	data, err := sonic.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	// 对话 id 双拼写与 context 都要落到请求体里
	for _, key := range []string{`"conversation_id":"conv-1"`, `"conversationId":"conv-1"`, `"context"`, `"business_type"`} {
		if !strings.Contains(body, key) {
			t.Errorf("请求体缺少 %s: %s", key, body)
		}
	}
}

func TestMessageRequestOmitsEmptyFields(t *testing.T) {
	data, err := sonic.Marshal(NewMessageRequest("你好", ""))
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, key := range []string{`"conversation_id"`, `"conversationId"`, `"context"`} {
		if strings.Contains(body, key) {
			t.Errorf("空字段 %s 不应出现: %s", key, body)
		}
	}
}
