package catalog

import (
	"strings"

	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// defaultEstimatedPrice 兜底月费, 用于估价表也没有覆盖的产品。
const defaultEstimatedPrice = 10.00

// 后端推荐里偶尔出现目录外的产品 id, 用这张表估价。
var estimatedPrices = map[string]float64{
	"azure-storage":           5.23,
	"azure-sql-database":      15.55,
	"azure-data-factory":      12.87,
	"azure-databricks":        21.45,
	"power-bi":                9.99,
	"azure-analysis-services": 18.25,
}

// Estimate 为目录外的推荐产品合成一条目录项, 价格与分类按 id 推断。
func Estimate(id, name string) entity.Product {
	price, ok := estimatedPrices[id]
	if !ok {
		price = defaultEstimatedPrice
	}
	if name == "" {
		name = id
	}
	return entity.Product{
		ID:          id,
		Name:        name,
		Description: "Azure " + name + " 服务",
		Price:       price,
		Category:    inferCategory(id),
	}
}

func inferCategory(id string) string {
	switch {
	case strings.Contains(id, "storage"):
		return entity.CategoryStorage
	case strings.Contains(id, "sql") || strings.Contains(id, "cosmos"):
		return entity.CategoryDatabase
	case strings.Contains(id, "vm") || strings.Contains(id, "function"):
		return entity.CategoryCompute
	case strings.Contains(id, "network") || strings.Contains(id, "cdn"):
		return entity.CategoryNetworking
	default:
		return entity.CategoryData
	}
}
