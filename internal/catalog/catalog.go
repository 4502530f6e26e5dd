// Package catalog 维护内置的云产品目录与预设解决方案。
// 目录是静态数据, 价格以美元月费计。
package catalog

import (
	"sort"

	"github.com/lvraikkonen/azure-calculator/internal/domain"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// products 是内置产品表, 按展示顺序排列。
var products = []entity.Product{
	{ID: "app-service", Name: "App Service", Description: "托管Web应用、REST API和移动后端", Price: 13.14, Category: entity.CategoryCompute},
	{ID: "sql-database", Name: "SQL Database", Description: "托管的关系型数据库服务", Price: 15.55, Category: entity.CategoryDatabase},
	{ID: "storage", Name: "Storage Account", Description: "高性能、高可用的云存储", Price: 5.23, Category: entity.CategoryStorage},
	{ID: "virtual-machine", Name: "Virtual Machine", Description: "可定制的云服务器", Price: 25.67, Category: entity.CategoryCompute},
	{ID: "cdn", Name: "Content Delivery Network", Description: "全球内容分发网络", Price: 8.76, Category: entity.CategoryNetworking},
	{ID: "blob-storage", Name: "Blob Storage", Description: "用于存储非结构化数据的服务", Price: 6.54, Category: entity.CategoryStorage},
	{ID: "data-factory", Name: "Data Factory", Description: "数据集成服务", Price: 12.87, Category: entity.CategoryData},
	{ID: "data-lake", Name: "Data Lake", Description: "大数据分析存储服务", Price: 17.32, Category: entity.CategoryData},
	{ID: "hdinsight", Name: "HDInsight", Description: "云中的开源分析服务", Price: 21.45, Category: entity.CategoryData},
	{ID: "cosmos-db", Name: "Cosmos DB", Description: "全球分布式多模型数据库", Price: 28.93, Category: entity.CategoryDatabase},
	{ID: "kubernetes", Name: "Kubernetes Service", Description: "托管的Kubernetes服务", Price: 19.44, Category: entity.CategoryCompute},
	{ID: "load-balancer", Name: "Load Balancer", Description: "分发网络流量的服务", Price: 9.12, Category: entity.CategoryNetworking},
}

var byID = func() map[string]entity.Product {
	m := make(map[string]entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}()

// solutions 是按业务类型与规模预设的方案表。
var solutions = map[string]entity.Bundle{
	"web-small": {
		Name:        "Web 应用基础解决方案",
		Description: "适合小型Web应用的基础云服务组合",
		Products: []entity.BundleProduct{
			{ID: "app-service", Name: "App Service", Quantity: 1},
			{ID: "sql-database", Name: "SQL Database", Quantity: 1},
			{ID: "storage", Name: "Storage Account", Quantity: 1},
		},
	},
	"web-medium": {
		Name:        "Web 应用标准解决方案",
		Description: "适合中型Web应用的标准云服务组合",
		Products: []entity.BundleProduct{
			{ID: "app-service", Name: "App Service", Quantity: 2},
			{ID: "sql-database", Name: "SQL Database", Quantity: 1},
			{ID: "storage", Name: "Storage Account", Quantity: 1},
			{ID: "cdn", Name: "Content Delivery Network", Quantity: 1},
		},
	},
	"data-small": {
		Name:        "数据处理基础解决方案",
		Description: "适合小型数据处理需求的基础云服务组合",
		Products: []entity.BundleProduct{
			{ID: "blob-storage", Name: "Blob Storage", Quantity: 1},
			{ID: "data-factory", Name: "Data Factory", Quantity: 1},
		},
	},
	"data-medium": {
		Name:        "数据处理标准解决方案",
		Description: "适合中型数据处理需求的标准云服务组合",
		Products: []entity.BundleProduct{
			{ID: "blob-storage", Name: "Blob Storage", Quantity: 1},
			{ID: "data-factory", Name: "Data Factory", Quantity: 1},
			{ID: "data-lake", Name: "Data Lake", Quantity: 1},
			{ID: "hdinsight", Name: "HDInsight", Quantity: 1},
		},
	},
}

// All 返回完整产品表的副本。
func All() []entity.Product {
	out := make([]entity.Product, len(products))
	copy(out, products)
	return out
}

// ByID 按产品 id 查找。
func ByID(id string) (entity.Product, error) {
	p, ok := byID[id]
	if !ok {
		return entity.Product{}, domain.NewNotFoundError("产品", id)
	}
	return p, nil
}

// ByCategory 返回指定分类下的产品, 分类为空时返回全部。
func ByCategory(category string) []entity.Product {
	if category == "" {
		return All()
	}
	var out []entity.Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories 返回目录中出现过的分类, 排序后输出。
func Categories() []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		seen[p.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SolutionFor 返回业务类型与规模对应的预设方案。
func SolutionFor(businessType, scale string) (entity.Bundle, error) {
	key := businessType + "-" + scale
	s, ok := solutions[key]
	if !ok {
		return entity.Bundle{}, domain.NewNotFoundError("预设方案", key)
	}
	return cloneBundle(s), nil
}

// SolutionKeys 返回全部预设方案的键, 排序后输出。
func SolutionKeys() []string {
	out := make([]string, 0, len(solutions))
	for k := range solutions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func cloneBundle(b entity.Bundle) entity.Bundle {
	out := b
	out.Products = make([]entity.BundleProduct, len(b.Products))
	copy(out.Products, b.Products)
	return out
}
