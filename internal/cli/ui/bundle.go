package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-runewidth"

	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

var (
	// Tree node styles
	bundleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)  // Cyan
	productStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // Blue
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // Gray
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true) // Pink

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// RenderBundleTree renders a recommended bundle as a tree with per-product
// pricing and a monthly total, converted to the given currency.
func RenderBundleTree(b *entity.Bundle, currency string) string {
	if b == nil || len(b.Products) == 0 {
		return keyStyle.Render("暂无推荐方案")
	}

	root := tree.New().Root(bundleStyle.Render(b.Name))
	if b.Description != "" {
		root.Child(keyStyle.Render(b.Description))
	}

	var total float64
	for _, bp := range b.Products {
		product, err := catalog.ByID(bp.ID)
		if err != nil {
			product = catalog.Estimate(bp.ID, bp.Name)
		}
		qty := bp.Quantity
		if qty < 1 {
			qty = 1
		}
		cost := product.Price * float64(qty)
		total += cost

		label := fmt.Sprintf("%s %s",
			productStyle.Render(product.Name),
			keyStyle.Render(fmt.Sprintf("x%d @ %s", qty, catalog.FormatPrice(product.Price, currency))),
		)
		root.Child(label)
	}

	root.Child(formatKeyValue("月度成本:", highlightStyle.Render(catalog.FormatPrice(total, currency))))
	return root.String()
}

// RenderProductTable renders the catalog as an aligned list.
func RenderProductTable(products []entity.Product, currency string) string {
	if len(products) == 0 {
		return keyStyle.Render("没有符合条件的产品")
	}

	maxName := 0
	maxCategory := 0
	for _, p := range products {
		if w := runewidth.StringWidth(p.Name); w > maxName {
			maxName = w
		}
		if w := runewidth.StringWidth(p.Category); w > maxCategory {
			maxCategory = w
		}
	}

	var output string
	for _, p := range products {
		output += fmt.Sprintf("  • %s  |  %s  |  %8s/月  |  %s\n",
			runewidth.FillRight(p.Name, maxName),
			keyStyle.Render(runewidth.FillRight(p.Category, maxCategory)),
			catalog.FormatPrice(p.Price, currency),
			keyStyle.Render(p.Description),
		)
	}
	return output
}

// RenderCart renders the selected products with quantities and the total.
func RenderCart(items []entity.SelectedProduct, currency string) string {
	if len(items) == 0 {
		return keyStyle.Render("清单为空, 用 azcalc cart add 添加产品")
	}

	maxName := 0
	for _, item := range items {
		if w := runewidth.StringWidth(item.Name); w > maxName {
			maxName = w
		}
	}

	var output string
	var total float64
	for _, item := range items {
		total += item.MonthlyCost()
		output += fmt.Sprintf("  • %s  x%-3d  %10s/月\n",
			runewidth.FillRight(item.Name, maxName),
			item.Quantity,
			catalog.FormatPrice(item.MonthlyCost(), currency),
		)
	}
	output += RenderCartSummary(len(items), total, currency)
	return output
}

// RenderCartSummary renders the item count and monthly total.
func RenderCartSummary(count int, total float64, currency string) string {
	summary := fmt.Sprintf("共 %s 项产品, 月度成本 %s",
		highlightStyle.Render(fmt.Sprintf("%d", count)),
		highlightStyle.Render(catalog.FormatPrice(total, currency)),
	)
	return summaryStyle.Render(summary)
}

// formatKeyValue formats a key-value pair
func formatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		value,
	)
}
