package extract

import "regexp"

var (
	orderIDPattern      = regexp.MustCompile(`Order ID:[ \t]*([A-Za-z0-9-]+)`)
	customerNamePattern = regexp.MustCompile(`Customer Name:[ \t]*([A-Za-z][A-Za-z \t]*)`)
	itemPattern         = regexp.MustCompile(`Item:[ \t]*([A-Za-z0-9][A-Za-z0-9 \t]*)\nPrice:[ \t]*([$\d.]+)`)
	totalPattern        = regexp.MustCompile(`Total:\s*Price:[ \t]*([$\d.]+)`)
)

// Item is one purchased line item.
type Item struct {
	Name  Field `json:"item" yaml:"item"`
	Price Field `json:"price" yaml:"price"`
}

// ReceiptRecord is the structured form of a receipt text.
type ReceiptRecord struct {
	OrderID      Field  `json:"order_id" yaml:"order_id"`
	CustomerName Field  `json:"customer_name" yaml:"customer_name"`
	Items        []Item `json:"items" yaml:"items"`
	Total        Field  `json:"total" yaml:"total"`
}

// Receipt extracts a ReceiptRecord from text.
//
// Unlike Prescription, a receipt with no items yields an empty Items slice
// rather than a placeholder row.
func Receipt(text string) ReceiptRecord {
	text = normalizeNewlines(text)

	rec := ReceiptRecord{
		OrderID:      firstSubmatch(orderIDPattern, text),
		CustomerName: firstSubmatch(customerNamePattern, text),
		Items:        []Item{},
		Total:        firstSubmatch(totalPattern, text),
	}
	for _, m := range itemPattern.FindAllStringSubmatch(text, -1) {
		rec.Items = append(rec.Items, Item{Name: fieldFrom(m[1]), Price: fieldFrom(m[2])})
	}
	return rec
}
