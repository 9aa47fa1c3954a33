package models

import (
	"fmt"
	"strings"
)

// Person represents a club member.
type Person struct {
	ID         string
	FirstName  string
	LastName   string
	BirthMonth int // 1-12
	BirthDay   int
	BirthYear  int // 0 when unknown

	// SearchKey is a coarse lookup index derived from the name and birth
	// fields. It is recomputed whenever those fields are set, never
	// mutated independently.
	SearchKey string
}

// NewPerson builds a Person and derives its search key.
func NewPerson(id, firstName, lastName string, birthMonth, birthDay, birthYear int) *Person {
	p := &Person{
		ID:         id,
		FirstName:  firstName,
		LastName:   lastName,
		BirthMonth: birthMonth,
		BirthDay:   birthDay,
		BirthYear:  birthYear,
	}
	p.SearchKey = p.deriveSearchKey()
	return p
}

// SetName updates the name and birth fields and re-derives the search key.
func (p *Person) SetName(firstName, lastName string, birthMonth, birthDay, birthYear int) {
	p.FirstName = firstName
	p.LastName = lastName
	p.BirthMonth = birthMonth
	p.BirthDay = birthDay
	p.BirthYear = birthYear
	p.SearchKey = p.deriveSearchKey()
}

func (p *Person) deriveSearchKey() string {
	initial := ""
	if p.LastName != "" {
		initial = strings.ToLower(p.LastName[:1])
	}
	return fmt.Sprintf("%s-%d-%d", initial, p.BirthDay, p.BirthMonth)
}

// SearchKeyFor derives the lookup index used to find people by last-name
// initial and birth date.
func SearchKeyFor(lastInitial string, birthDay, birthMonth int) string {
	return fmt.Sprintf("%s-%d-%d", strings.ToLower(lastInitial), birthDay, birthMonth)
}

// FullName returns "First Last".
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ToItem converts the person to the generic key-value item shape.
func (p *Person) ToItem() Item {
	return Item{
		"id":         p.ID,
		"firstName":  p.FirstName,
		"lastName":   p.LastName,
		"birthMonth": p.BirthMonth,
		"birthDay":   p.BirthDay,
		"birthYear":  p.BirthYear,
		"search_key": p.SearchKey,
	}
}

// PersonFromItem builds a Person from the generic key-value item shape.
// The stored search key wins over re-derivation, matching what was
// persisted.
func PersonFromItem(item Item) *Person {
	p := NewPerson(
		itemString(item, "id"),
		itemString(item, "firstName"),
		itemString(item, "lastName"),
		itemInt(item, "birthMonth"),
		itemInt(item, "birthDay"),
		itemInt(item, "birthYear"),
	)
	if key := itemString(item, "search_key"); key != "" {
		p.SearchKey = key
	}
	return p
}
