package models

import "time"

// EngineHours records engine use reported at check-in. There is no identity
// beyond the (boatId, timestamp) composite.
type EngineHours struct {
	BoatID    string
	Hours     float64
	Reason    string
	Timestamp time.Time
}

// ToItem converts the record to the generic key-value item shape.
func (e *EngineHours) ToItem() Item {
	return Item{
		"boatId":    e.BoatID,
		"hours":     e.Hours,
		"reason":    e.Reason,
		"timestamp": e.Timestamp,
	}
}

// EngineHoursFromItem builds an EngineHours record from the generic
// key-value item shape.
func EngineHoursFromItem(item Item) *EngineHours {
	return &EngineHours{
		BoatID:    itemString(item, "boatId"),
		Hours:     itemFloat(item, "hours"),
		Reason:    itemString(item, "reason"),
		Timestamp: itemTime(item, "timestamp"),
	}
}
