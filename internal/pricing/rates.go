package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Static recharge tables: paid amount in minor units (cents) to credited
// points. Amounts outside the table credit zero; that is a configuration gap
// on the pricing page, not an error.
var (
	cnyAmountToCredit = map[int64]int64{
		2900:  500,
		4900:  1000,
		9900:  2000,
		19900: 4500,
		49900: 12000,
		99900: 25000,
	}

	usdAmountToCredit = map[int64]int64{
		400:   500,
		700:   1000,
		1400:  2000,
		2800:  4500,
		7000:  12000,
		14000: 25000,
	}

	cadAmountToCredit = map[int64]int64{
		700:   500,
		1240:  1000,
		2480:  2000,
		4960:  4500,
		12400: 12000,
		24800: 25000,
	}
)

var packageTitles = []string{
	"Entry Package",
	"Basic Package",
	"Standard Package",
	"Premium Package",
	"Diamond Package",
	"Enterprise Package",
}

// tableOrder keeps the package listing stable; map iteration order is not.
var tableOrder = map[string][]int64{
	"cny": {2900, 4900, 9900, 19900, 49900, 99900},
	"usd": {400, 700, 1400, 2800, 7000, 14000},
	"cad": {700, 1240, 2480, 4960, 12400, 24800},
}

func amountToCreditMap(currency string) map[int64]int64 {
	switch strings.ToLower(currency) {
	case "cny":
		return cnyAmountToCredit
	case "usd":
		return usdAmountToCredit
	case "cad":
		return cadAmountToCredit
	default:
		return nil
	}
}

// CreditForAmount returns the credited points for a paid amount in minor
// units. Unsupported currencies and unlisted amounts credit zero.
func CreditForAmount(currency string, amountMinor int64) decimal.Decimal {
	table := amountToCreditMap(currency)
	if table == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(table[amountMinor])
}

// Package is one purchasable recharge bundle on the pricing page.
type Package struct {
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Credits int64  `json:"credits"`
}

// RateTable returns the ordered package listing for a currency, or nil for an
// unsupported currency.
func RateTable(currency string) []Package {
	currency = strings.ToLower(currency)
	table := amountToCreditMap(currency)
	if table == nil {
		return nil
	}

	order := tableOrder[currency]
	packages := make([]Package, 0, len(order))
	for i, amount := range order {
		name := packageTitles[len(packageTitles)-1]
		if i < len(packageTitles) {
			name = packageTitles[i]
		}
		packages = append(packages, Package{
			Name:    name,
			Price:   amount,
			Credits: table[amount],
		})
	}
	return packages
}
