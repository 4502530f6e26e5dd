// Package loader 从 YAML 文件加载产品组合定义。
package loader

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// BundleFile 是 YAML 组合定义文件的结构。
type BundleFile struct {
	// Kind 固定为 "Bundle"。
	Kind string     `yaml:"kind"`
	Spec BundleSpec `yaml:"spec"`
}

// BundleSpec 是组合定义的内容。
type BundleSpec struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Products    []BundleSpecProduct `yaml:"products"`
}

// BundleSpecProduct 是组合里的一项产品。
type BundleSpecProduct struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Quantity int    `yaml:"quantity,omitempty"`
}

// LoadFromFile 从 YAML 文件加载组合定义并校验必填字段。
func LoadFromFile(filepath string) (*BundleFile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var bundle BundleFile
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if bundle.Kind == "" {
		return nil, fmt.Errorf("'kind' field is required")
	}
	if bundle.Kind != "Bundle" {
		return nil, fmt.Errorf("invalid kind '%s', must be 'Bundle'", bundle.Kind)
	}
	if bundle.Spec.Name == "" {
		return nil, fmt.Errorf("spec.name is required")
	}
	if len(bundle.Spec.Products) == 0 {
		return nil, fmt.Errorf("spec.products is required and must not be empty")
	}
	for i, p := range bundle.Spec.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("spec.products[%d].id is required", i)
		}
	}

	return &bundle, nil
}

// ToBundle 把文件定义转成领域对象, 数量缺省按 1 处理。
func (b *BundleFile) ToBundle() *entity.Bundle {
	out := &entity.Bundle{
		Name:        b.Spec.Name,
		Description: b.Spec.Description,
	}
	for _, p := range b.Spec.Products {
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		out.Products = append(out.Products, entity.BundleProduct{
			ID:       p.ID,
			Name:     p.Name,
			Quantity: qty,
		})
	}
	return out
}
