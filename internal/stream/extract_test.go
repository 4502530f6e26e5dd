package stream

import (
	"reflect"
	"testing"

	"github.com/bytedance/sonic"
)

func parseObject(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var obj map[string]interface{}
	if err := sonic.UnmarshalString(raw, &obj); err != nil {
		t.Fatalf("测试载荷不是合法 JSON: %v", err)
	}
	return obj
}

func TestExtractStructuredBundle(t *testing.T) {
	obj := parseObject(t, `{
		"recommendation": {
			"name": "应用基础解决方案",
			"products": [
				{"id": "vm-basic", "name": "云主机", "quantity": "2"},
				{"name": "对象存储"},
				{"id": "db-mysql", "quantity": 0}
			]
		}
	}`)

	data := ExtractStructured(obj)
	if data.Bundle == nil {
		t.Fatal("期望提取到推荐组合")
	}
	if data.Bundle.Name != "应用基础解决方案" {
		t.Errorf("名称 = %q", data.Bundle.Name)
	}
	if data.Bundle.Description != defaultBundleDescription {
		t.Errorf("缺失描述应使用占位值, 实际 %q", data.Bundle.Description)
	}
	if len(data.Bundle.Products) != 3 {
		t.Fatalf("产品数 = %d, 期望 3", len(data.Bundle.Products))
	}

	p := data.Bundle.Products
	if p[0].ID != "vm-basic" || p[0].Quantity != 2 {
		t.Errorf("数量字符串 \"2\" 应被解析为 2: %+v", p[0])
	}
	if p[1].ID != "product-2" || p[1].Name != "对象存储" || p[1].Quantity != 1 {
		t.Errorf("缺失 id 应合成 product-2 且数量默认 1: %+v", p[1])
	}
	if p[2].Name != "db-mysql" || p[2].Quantity != 1 {
		t.Errorf("非法数量应回退到 1, 缺失名称回退到 id: %+v", p[2])
	}
}

func TestExtractStructuredBundleDefaults(t *testing.T) {
	data := ExtractStructured(parseObject(t, `{"recommendation":{}}`))
	if data.Bundle == nil {
		t.Fatal("空推荐对象仍应产出组合")
	}
	if data.Bundle.Name != defaultBundleName || data.Bundle.Description != defaultBundleDescription {
		t.Errorf("应使用占位名称与描述: %+v", data.Bundle)
	}
	if len(data.Bundle.Products) != 0 {
		t.Errorf("产品应为空: %+v", data.Bundle.Products)
	}
}

func TestExtractStructuredSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
		wantHas bool
	}{
		{
			name:    "去空白截断到上限",
			payload: `{"suggestions":["a"," ","b","c","d","e","f"]}`,
			want:    []string{"a", "b", "c", "d", "e"},
			wantHas: true,
		},
		{
			name:    "非字符串元素被跳过",
			payload: `{"suggestions":["能否升级?",42,null]}`,
			want:    []string{"能否升级?"},
			wantHas: true,
		},
		{
			name:    "非数组形状清空建议",
			payload: `{"suggestions":"oops"}`,
			want:    nil,
			wantHas: true,
		},
		{
			name:    "字段缺失不触发替换",
			payload: `{"message":"hi"}`,
			want:    nil,
			wantHas: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ExtractStructured(parseObject(t, tt.payload))
			if data.HasSuggestions != tt.wantHas {
				t.Fatalf("HasSuggestions = %v, 期望 %v", data.HasSuggestions, tt.wantHas)
			}
			if !reflect.DeepEqual(data.Suggestions, tt.want) {
				t.Errorf("Suggestions = %v, 期望 %v", data.Suggestions, tt.want)
			}
		})
	}
}

func TestExtractStructuredConversationID(t *testing.T) {
	data := ExtractStructured(parseObject(t, `{"conversation_id":"conv-42","message":"ok"}`))
	if data.ConversationID != "conv-42" {
		t.Errorf("ConversationID = %q", data.ConversationID)
	}
	if data.Bundle != nil || data.HasSuggestions {
		t.Errorf("不应产生其它字段: %+v", data)
	}
}

func TestExtractStructuredUnwrapsContent(t *testing.T) {
	obj := parseObject(t, `{
		"conversation_id": "conv-7",
		"content": "{\"recommendation\":{\"name\":\"数据分析方案\",\"products\":[{\"id\":\"db-mysql\",\"quantity\":3}]},\"suggestions\":[\"需要备份吗?\"]}"
	}`)

	data := ExtractStructured(obj)
	if data.Bundle == nil || data.Bundle.Name != "数据分析方案" {
		t.Fatalf("嵌套 content 未被解包: %+v", data.Bundle)
	}
	if len(data.Bundle.Products) != 1 || data.Bundle.Products[0].Quantity != 3 {
		t.Errorf("产品 = %+v", data.Bundle.Products)
	}
	if !reflect.DeepEqual(data.Suggestions, []string{"需要备份吗?"}) {
		t.Errorf("Suggestions = %v", data.Suggestions)
	}
	// 外层 conversation_id 在解包后不能丢
	if data.ConversationID != "conv-7" {
		t.Errorf("ConversationID = %q, 期望 conv-7", data.ConversationID)
	}
}

func TestExtractStructuredEmpty(t *testing.T) {
	data := ExtractStructured(parseObject(t, `{"message":"纯文本"}`))
	if !data.Empty() {
		t.Errorf("纯文本载荷应为空结果: %+v", data)
	}
	if !(StructuredData{}).Empty() {
		t.Error("零值应为空")
	}
}
