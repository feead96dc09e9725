package models

// SavedAddress is a delivery address kept in a customer's address book
type SavedAddress struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	IsDefault bool   `json:"isDefault"`
	DeliveryAddress
}

// AddressInput is the payload used to add or edit a saved address
type AddressInput struct {
	Label     string `json:"label"`
	IsDefault bool   `json:"isDefault"`
	DeliveryAddress
}
