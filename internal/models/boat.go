package models

import "time"

// Boat represents a club boat. Name doubles as an alternate lookup key.
type Boat struct {
	ID               string
	Name             string
	IsAvailable      bool
	CheckedOutTo     string // person id, empty when the boat is in
	CheckedOutToName string
	CheckOutReason   string
	CheckedOutAt     time.Time
	CheckedInAt      time.Time

	// Defects is populated transiently by the issue-discovery workflow.
	// It is never persisted with the boat record.
	Defects *DefectsForBoat
}

// MarkCheckedOut flips the boat to unavailable and stamps the checkout
// markers. CheckedInAt is reset so a stale check-in time never survives a
// new checkout.
func (b *Boat) MarkCheckedOut(person *Person, reason string, at time.Time) {
	b.IsAvailable = false
	b.CheckOutReason = reason
	b.CheckedOutAt = at
	b.CheckedInAt = time.Time{}
	if person != nil {
		b.CheckedOutTo = person.ID
		b.CheckedOutToName = person.FullName()
	}
}

// MarkCheckedIn flips the boat back to available and clears the checkout
// markers.
func (b *Boat) MarkCheckedIn(at time.Time) {
	b.IsAvailable = true
	b.CheckedOutTo = ""
	b.CheckedOutToName = ""
	b.CheckOutReason = ""
	b.CheckedInAt = at
}

// ToItem converts the boat to the generic key-value item shape.
func (b *Boat) ToItem() Item {
	return Item{
		"id":               b.ID,
		"name":             b.Name,
		"isAvailable":      b.IsAvailable,
		"checkedOutTo":     b.CheckedOutTo,
		"checkedOutToName": b.CheckedOutToName,
		"checkOutReason":   b.CheckOutReason,
		"checkedOutAt":     b.CheckedOutAt,
		"checkedInAt":      b.CheckedInAt,
	}
}

// BoatFromItem builds a Boat from the generic key-value item shape.
func BoatFromItem(item Item) *Boat {
	return &Boat{
		ID:               itemString(item, "id"),
		Name:             itemString(item, "name"),
		IsAvailable:      itemBool(item, "isAvailable"),
		CheckedOutTo:     itemString(item, "checkedOutTo"),
		CheckedOutToName: itemString(item, "checkedOutToName"),
		CheckOutReason:   itemString(item, "checkOutReason"),
		CheckedOutAt:     itemTime(item, "checkedOutAt"),
		CheckedInAt:      itemTime(item, "checkedInAt"),
	}
}
