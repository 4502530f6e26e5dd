package entity

// 产品类别
const (
	CategoryCompute    = "compute"
	CategoryStorage    = "storage"
	CategoryDatabase   = "database"
	CategoryNetworking = "networking"
	CategoryData       = "data"
)

// Product 可选购的云产品（价格为 USD 月费）
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// SelectedProduct 购物车中的产品及数量
type SelectedProduct struct {
	Product
	Quantity int `json:"quantity"`
}

// MonthlyCost 该条目的月度费用（USD）
func (p SelectedProduct) MonthlyCost() float64 {
	return p.Price * float64(p.Quantity)
}
