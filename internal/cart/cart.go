// Package cart 管理已选产品清单与月度成本计算。
package cart

import (
	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/domain"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// Cart 是一份已选产品清单。零值即空清单, 非并发安全。
type Cart struct {
	items []entity.SelectedProduct
}

// New 创建空清单。
func New() *Cart {
	return &Cart{}
}

// Items 返回清单内容的副本, 保持加入顺序。
func (c *Cart) Items() []entity.SelectedProduct {
	out := make([]entity.SelectedProduct, len(c.items))
	copy(out, c.items)
	return out
}

// Len 返回清单条目数。
func (c *Cart) Len() int {
	return len(c.items)
}

// Add 把目录产品加入清单。已存在时数量加一。
func (c *Cart) Add(p entity.Product) {
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, entity.SelectedProduct{Product: p, Quantity: 1})
}

// UpdateQuantity 设置条目数量, 数量小于等于 0 时等价于移除。
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return domain.NewNotFoundError("清单条目", productID)
}

// Remove 把条目移出清单。
func (c *Cart) Remove(productID string) error {
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("清单条目", productID)
}

// Clear 清空清单。
func (c *Cart) Clear() {
	c.items = nil
}

// Total 返回清单的月度总成本, 以 USD 计。
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items {
		total += item.MonthlyCost()
	}
	return total
}

// ApplyBundle 用推荐组合整体替换清单。组合里的产品优先按目录解析,
// 目录外的产品按 id 估价合成。数量缺失按 1 处理。
func (c *Cart) ApplyBundle(b *entity.Bundle) {
	if b == nil {
		return
	}
	c.items = nil
	for _, bp := range b.Products {
		product, err := catalog.ByID(bp.ID)
		if err != nil {
			product = catalog.Estimate(bp.ID, bp.Name)
		}
		qty := bp.Quantity
		if qty < 1 {
			qty = 1
		}
		c.items = append(c.items, entity.SelectedProduct{Product: product, Quantity: qty})
	}
}
