package bank

import "fmt"

// Account is one row of an account summary page.
type Account struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	// Balance has two decimal precision (e.g., -2,000.00 is -200000)
	Balance int64 `json:"balance"`
}

// FormatAmount renders a two decimal fixed point amount as "1234.56".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
