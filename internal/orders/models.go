package orders

type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Weight    float64 `json:"weight"`
	Price     float64 `json:"price"`
	Inventory int     `json:"inventory"`
}

type Address struct {
	ID      int64  `json:"id"`
	Country string `json:"country"`
	City    string `json:"city"`
	Street  string `json:"street"`
}

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

type Order struct {
	ID        int64       `json:"id"`
	Status    Status      `json:"status"`
	AddressID int64       `json:"address_id"`
	Items     []OrderItem `json:"productitems"`
}

type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ProductPatch lists the fields a product update may carry; nil means "leave
// as is".
type ProductPatch struct {
	Name      *string  `json:"name"`
	Color     *string  `json:"color"`
	Weight    *float64 `json:"weight"`
	Price     *float64 `json:"price"`
	Inventory *int     `json:"inventory"`
}

type AddressPatch struct {
	Country *string `json:"country"`
	City    *string `json:"city"`
	Street  *string `json:"street"`
}

// UserPatch carries an already-hashed password; hashing happens in the auth
// package before the repo sees it.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	IsAdmin      *bool
}
