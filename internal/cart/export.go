package cart

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lvraikkonen/azure-calculator/internal/catalog"
	"github.com/lvraikkonen/azure-calculator/internal/domain"
)

// ExportCSV 把清单写成 CSV, 价格按目标货币换算。最后一行是合计。
func ExportCSV(w io.Writer, c *Cart, currency string) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "name", "category", fmt.Sprintf("unit_price_%s", currency), "quantity", "monthly_cost"}
	if err := cw.Write(header); err != nil {
		return domain.NewInternalError(fmt.Errorf("写入 CSV 表头: %w", err))
	}

	for _, item := range c.Items() {
		row := []string{
			item.ID,
			item.Name,
			item.Category,
			strconv.FormatFloat(catalog.ConvertPrice(item.Price, currency), 'f', 2, 64),
			strconv.Itoa(item.Quantity),
			strconv.FormatFloat(catalog.ConvertPrice(item.MonthlyCost(), currency), 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return domain.NewInternalError(fmt.Errorf("写入 CSV 行: %w", err))
		}
	}

	total := []string{"total", "", "", "", "", strconv.FormatFloat(catalog.ConvertPrice(c.Total(), currency), 'f', 2, 64)}
	if err := cw.Write(total); err != nil {
		return domain.NewInternalError(fmt.Errorf("写入 CSV 合计行: %w", err))
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return domain.NewInternalError(fmt.Errorf("刷新 CSV: %w", err))
	}
	return nil
}
