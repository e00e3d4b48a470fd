// Package models contains GORM persistence models. Domain entities carry no
// ORM tags; each model converts to and from its entity with ToDomain and
// FromDomain. ToDomain validates stored enum values and reports rows that do
// not decode as MALFORMED_DOCUMENT instead of passing bad data upward.
package models
