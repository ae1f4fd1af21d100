// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - identity.go, partner.go, catalog.go: users, sites, suppliers and items
//   - inventory.go: inventory records, ledger entries and document sequences
//   - requisition.go, logistics.go, procurement.go, receiving.go: the document aggregates
package models
