package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para PUT /api/inventory.
// Mode: add (suma), subtract (resta), set (fija un valor absoluto).
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Mode      string `json:"mode"`
	Notes     string `json:"notes,omitempty"`
}

// AdjustStockResponse resultado del ajuste.
type AdjustStockResponse struct {
	ProductID        string `json:"product_id"`
	PreviousQuantity int64  `json:"previous_quantity"`
	NewQuantity      int64  `json:"new_quantity"`
}

// InventoryLevelResponse fila del listado de inventario.
type InventoryLevelResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	MinStock    int64           `json:"min_stock"`
	StockStatus string          `json:"stock_status"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// InventoryStatsResponse agregados del inventario.
type InventoryStatsResponse struct {
	Total      int             `json:"total"`
	LowStock   int             `json:"low_stock"`
	OutOfStock int             `json:"out_of_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// InventoryListResponse listado con estadísticas.
type InventoryListResponse struct {
	Inventory []InventoryLevelResponse `json:"inventory"`
	Stats     InventoryStatsResponse   `json:"stats"`
	Page      PageResponse             `json:"page"`
}

// MovementResponse movimiento en respuestas.
type MovementResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	Quantity         int64     `json:"quantity"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	Type             string    `json:"movement_type"`
	ReferenceType    string    `json:"reference_type,omitempty"`
	ReferenceID      string    `json:"reference_id,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
