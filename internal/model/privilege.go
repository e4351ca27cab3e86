package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product management
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:adjust_stock", Name: "Adjust Stock"},
	// Batch management
	{Code: "batch:view", Name: "View Batch"},
	{Code: "batch:create", Name: "Create Batch"},
	{Code: "batch:receive", Name: "Receive Batch"},
	{Code: "batch:expire", Name: "Run Batch Expiry Sweep"},
	// Sales
	{Code: "sale:view", Name: "View Sale"},
	{Code: "sale:create", Name: "Create Sale"},
	{Code: "sale:void", Name: "Void Sale"},
	// Payments
	{Code: "payment:record", Name: "Record Payment"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
	// Shift management
	{Code: "shift:view", Name: "View Shift"},
	{Code: "shift:open", Name: "Open Shift"},
	{Code: "shift:close", Name: "Close Shift"},
}
