package catalog

import "fmt"

// 以 USD 为基准的固定汇率表。汇率是示例值, 不追实时行情。
var currencyRates = map[string]float64{
	"USD": 1,
	"CNY": 7.15,
	"EUR": 0.92,
}

var currencySymbols = map[string]string{
	"USD": "$",
	"CNY": "¥",
	"EUR": "€",
}

// SupportedCurrencies 返回支持的货币代码。
func SupportedCurrencies() []string {
	return []string{"USD", "CNY", "EUR"}
}

// IsSupportedCurrency 判断货币代码是否受支持。
func IsSupportedCurrency(currency string) bool {
	_, ok := currencyRates[currency]
	return ok
}

// ConvertPrice 把 USD 价格换算到目标货币。未知货币按 USD 处理。
func ConvertPrice(usd float64, currency string) float64 {
	rate, ok := currencyRates[currency]
	if !ok {
		rate = 1
	}
	return usd * rate
}

// CurrencySymbol 返回货币符号, 未知货币回退到美元符号。
func CurrencySymbol(currency string) string {
	if s, ok := currencySymbols[currency]; ok {
		return s
	}
	return "$"
}

// FormatPrice 按目标货币换算并格式化 USD 价格, 如 "¥93.96"。
func FormatPrice(usd float64, currency string) string {
	return fmt.Sprintf("%s%.2f", CurrencySymbol(currency), ConvertPrice(usd, currency))
}
