// Package models contains GORM persistence models for the ledger tables.
// Domain types carry no ORM tags; repositories convert with ToDomain and
// FromDomain at the boundary.
package models
