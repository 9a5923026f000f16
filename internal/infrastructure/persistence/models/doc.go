// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: shared column helpers
// - catalog.go: products
// - order.go: orders and their line item snapshots
// - notification.go: admin notifications
package models
