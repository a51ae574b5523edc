package domain

import "time"

// Order is one checkout by a user. Lines carry the per-item quantities.
type Order struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint        `gorm:"column:user_id;not null;index" json:"user_id"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID" json:"lines"`
	CreatedAt time.Time   `gorm:"column:created_at;index" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderLine struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint64  `gorm:"column:order_id;not null;index" json:"order_id"`
	MenuItemID uint64  `gorm:"column:menu_item_id;not null;index" json:"menu_item_id"`
	Quantity   int     `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice  float64 `gorm:"column:unit_price;type:numeric" json:"unit_price"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}

// ItemQuantity is the summed quantity of one menu item over a window.
type ItemQuantity struct {
	MenuItemID uint64 `gorm:"column:menu_item_id" json:"menu_item_id"`
	Total      int64  `gorm:"column:total" json:"total"`
}
