package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTemp(t, `
kind: Bundle
spec:
  name: 自定义Web方案
  description: 测试用组合
  products:
    - id: app-service
      name: App Service
      quantity: 2
    - id: storage
`)

	bundle, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if bundle.Kind != "Bundle" || bundle.Spec.Name != "自定义Web方案" {
		t.Errorf("文件内容 = %+v", bundle)
	}

	b := bundle.ToBundle()
	if len(b.Products) != 2 {
		t.Fatalf("产品数 = %d", len(b.Products))
	}
	if b.Products[0].Quantity != 2 {
		t.Errorf("产品[0] 数量 = %d", b.Products[0].Quantity)
	}
	// 缺省数量按 1 处理
	if b.Products[1].ID != "storage" || b.Products[1].Quantity != 1 {
		t.Errorf("产品[1] = %+v", b.Products[1])
	}
}

func TestLoadFromFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "缺少 kind",
			content: "spec:\n  name: x\n  products:\n    - id: a\n",
			wantErr: "'kind' field is required",
		},
		{
			name:    "kind 不是 Bundle",
			content: "kind: Solution\nspec:\n  name: x\n  products:\n    - id: a\n",
			wantErr: "invalid kind",
		},
		{
			name:    "缺少名称",
			content: "kind: Bundle\nspec:\n  products:\n    - id: a\n",
			wantErr: "spec.name is required",
		},
		{
			name:    "产品列表为空",
			content: "kind: Bundle\nspec:\n  name: x\n",
			wantErr: "spec.products is required",
		},
		{
			name:    "产品缺少 id",
			content: "kind: Bundle\nspec:\n  name: x\n  products:\n    - name: y\n",
			wantErr: "spec.products[0].id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeTemp(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, 期望包含 %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("缺失文件应报错")
	}
}
