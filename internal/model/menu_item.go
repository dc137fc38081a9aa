package model

// MenuItem is the read model consumed from the menu catalog.  The core never
// writes menu data; it only needs the price snapshot, availability and the
// kitchen station a dish is routed to.
type MenuItem struct {
	ID          uint64 // menu_items.id
	Name        string // menu_items.name
	PriceCents  int64  // menu_items.price_cents
	StationID   uint64 // menu_items.station_id
	IsAvailable bool   // menu_items.is_available
	IsActive    bool   // menu_items.is_active
}
