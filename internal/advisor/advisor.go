// Package advisor 维护智能顾问的业务画像与推荐状态。
package advisor

import (
	"strings"

	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// 业务类型。
const (
	BusinessWeb  = "web"
	BusinessData = "data"
)

// 业务规模。
const (
	ScaleSmall  = "small"
	ScaleMedium = "medium"
)

// Advisor 记录当前会话里推断出的业务画像与最新推荐方案。
// 非并发安全, 由单个会话持有。
type Advisor struct {
	businessType string
	scale        string
	bundle       *entity.Bundle
}

// New 创建空画像的顾问。
func New() *Advisor {
	return &Advisor{}
}

// BusinessType 返回已推断的业务类型, 未知时为空。
func (a *Advisor) BusinessType() string { return a.businessType }

// Scale 返回已推断的业务规模, 未知时为空。
func (a *Advisor) Scale() string { return a.scale }

// Bundle 返回最新推荐方案, 没有时为 nil。
func (a *Advisor) Bundle() *entity.Bundle { return a.bundle }

// SetProfile 直接设定业务画像, 用于命令行参数或交互问卷。
func (a *Advisor) SetProfile(businessType, scale string) {
	a.businessType = businessType
	a.scale = scale
}

// SetBundle 记录后端推送的推荐方案, 并从方案名称反推业务画像,
// 保持后续追问与推荐的上下文一致。
func (a *Advisor) SetBundle(b *entity.Bundle) {
	a.bundle = b
	if b == nil {
		return
	}
	switch {
	case strings.Contains(b.Name, "数据"):
		a.businessType = BusinessData
	case strings.Contains(b.Name, "Web"):
		a.businessType = BusinessWeb
	default:
		return
	}
	if strings.Contains(b.Name, "基础") {
		a.scale = ScaleSmall
	} else {
		a.scale = ScaleMedium
	}
}

// Recommend 按当前画像给出预设方案并记录为最新推荐。
// 画像不完整时返回错误。
func (a *Advisor) Recommend() (entity.Bundle, error) {
	b, err := catalog.SolutionFor(a.businessType, a.scale)
	if err != nil {
		return entity.Bundle{}, err
	}
	a.bundle = &b
	return b, nil
}
