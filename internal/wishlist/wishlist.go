package wishlist

// Wishlist is the wishlist row an item belongs to.
type Wishlist struct {
	ID         int64 `json:"wishlist_id"`
	CustomerID int64 `json:"customer_id"`
	Shared     bool  `json:"shared"`
}
