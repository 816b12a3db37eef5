package models

// Stats - сводка для админ-панели.
type Stats struct {
	TotalOrders    int64         `json:"total_orders"`
	TotalRevenue   int64         `json:"total_revenue"`
	TotalProfit    int64         `json:"total_profit"`
	TotalProducts  int64         `json:"total_products"`
	ActiveAdmins   int64         `json:"active_admins"`
	TotalCustomers int64         `json:"total_customers"`
	OrdersByStatus map[int]int64 `json:"orders_by_status"`
}
