package catalog

import (
	"testing"

	"github.com/lvraikkonen/azure-calculator/internal/domain"
)

func TestByID(t *testing.T) {
	p, err := ByID("cosmos-db")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if p.Name != "Cosmos DB" || p.Price != 28.93 {
		t.Errorf("产品 = %+v", p)
	}

	if _, err := ByID("no-such"); !domain.IsNotFound(err) {
		t.Errorf("未知 id 应返回 not found, 实际 %v", err)
	}
}

func TestByCategory(t *testing.T) {
	data := ByCategory("data")
	if len(data) != 3 {
		t.Fatalf("data 分类产品数 = %d, 期望 3", len(data))
	}
	for _, p := range data {
		if p.Category != "data" {
			t.Errorf("混入了其它分类: %+v", p)
		}
	}

	if got := ByCategory(""); len(got) != len(All()) {
		t.Errorf("空分类应返回全部, 实际 %d", len(got))
	}
	if got := ByCategory("no-such"); len(got) != 0 {
		t.Errorf("未知分类应为空, 实际 %v", got)
	}
}

func TestSolutionFor(t *testing.T) {
	tests := []struct {
		businessType string
		scale        string
		wantName     string
		wantProducts int
	}{
		{"web", "small", "Web 应用基础解决方案", 3},
		{"web", "medium", "Web 应用标准解决方案", 4},
		{"data", "small", "数据处理基础解决方案", 2},
		{"data", "medium", "数据处理标准解决方案", 4},
	}

	for _, tt := range tests {
		b, err := SolutionFor(tt.businessType, tt.scale)
		if err != nil {
			t.Fatalf("SolutionFor(%s, %s): %v", tt.businessType, tt.scale, err)
		}
		if b.Name != tt.wantName || len(b.Products) != tt.wantProducts {
			t.Errorf("方案 %s-%s = %q (%d 产品)", tt.businessType, tt.scale, b.Name, len(b.Products))
		}
		// 方案里引用的产品必须都在目录中
		for _, p := range b.Products {
			if _, err := ByID(p.ID); err != nil {
				t.Errorf("方案 %s-%s 引用了目录外产品 %s", tt.businessType, tt.scale, p.ID)
			}
		}
	}

	if _, err := SolutionFor("web", "large"); !domain.IsNotFound(err) {
		t.Errorf("未知规模应返回 not found, 实际 %v", err)
	}
}

func TestSolutionForReturnsCopy(t *testing.T) {
	a, _ := SolutionFor("web", "small")
	a.Products[0].Quantity = 99

	b, _ := SolutionFor("web", "small")
	if b.Products[0].Quantity == 99 {
		t.Error("修改返回值污染了预设表")
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		usd      float64
		currency string
		want     string
	}{
		{13.14, "USD", "$13.14"},
		{13.14, "CNY", "¥93.95"},
		{13.14, "EUR", "€12.09"},
		{13.14, "XXX", "$13.14"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.usd, tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%v, %s) = %q, 期望 %q", tt.usd, tt.currency, got, tt.want)
		}
	}
}
