package models

import "strings"

// CartLine is one entry in a shopping cart. ID is the product id, suffixed
// with "-<size>" when a size was chosen, so size variants are distinct lines.
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size,omitempty"`
}

// LineID builds the cart line id for productID in size.
func LineID(productID, size string) string {
	if size == "" {
		return productID
	}
	return productID + "-" + size
}

// NewCartLine builds a line for qty units of p in size.
func NewCartLine(p Product, size string, qty int) CartLine {
	return CartLine{
		ID:       LineID(p.ID, size),
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.PrimaryImage(),
		Quantity: qty,
		Size:     size,
	}
}

// Key is the identity used when merging carts: id and size together.
func (l CartLine) Key() string {
	return l.ID + "\x00" + l.Size
}

// ProductID strips the size suffix off the line id.
func (l CartLine) ProductID() string {
	if l.Size == "" {
		return l.ID
	}
	return strings.TrimSuffix(l.ID, "-"+l.Size)
}

// CloneLines returns a copy of lines that shares no backing array.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
