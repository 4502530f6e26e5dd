package entity

// BundleProduct 解决方案中的单个产品引用
type BundleProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Bundle AI 顾问推荐的云服务解决方案
type Bundle struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Products    []BundleProduct `json:"products"`
}
