package model

import "time"

// TableStatus enumerates the states of a restaurant table.  occupied is a
// derived value: it holds if and only if at least one non-terminal order
// references the table.  reserved and maintenance are manual overrides set
// by staff; maintenance additionally blocks new occupancy until cleared.
type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableMaintenance TableStatus = "maintenance"
)

// Valid reports whether s is a known table status.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableMaintenance:
		return true
	}
	return false
}

// ManualOverride reports whether s may be set directly by staff rather than
// derived from order activity.
func (s TableStatus) ManualOverride() bool {
	return s == TableReserved || s == TableMaintenance || s == TableAvailable
}

// RestaurantTable represents a physical table.  The occupancy tracker is the
// sole writer of the status field outside the manual overrides.
//
// Fields:
//
//	ID          – primary key identifier.
//	TableNumber – unique, human-displayable table number.
//	Capacity    – maximum party size.
//	MinCapacity – minimum party size for seating policies.
//	Status      – derived occupancy or manual override.
//	Location    – free-form area label (e.g. "terrace").
//	IsActive    – inactive tables cannot take orders.
type RestaurantTable struct {
	ID          uint64      // restaurant_tables.id
	TableNumber string      // restaurant_tables.table_number
	Capacity    uint32      // restaurant_tables.capacity
	MinCapacity uint32      // restaurant_tables.min_capacity
	Status      TableStatus // restaurant_tables.status
	Location    string      // restaurant_tables.location
	IsActive    bool        // restaurant_tables.is_active
	CreatedAt   time.Time   // restaurant_tables.created_at
	UpdatedAt   time.Time   // restaurant_tables.updated_at
}
