package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/lib/pq"

	"github.com/sanjshine99/carepath/internal/geo"
)

// Value implements driver.Valuer so a SkillSet persists as a Postgres
// text[] column via pq.StringArray.
func (set SkillSet) Value() (driver.Value, error) {
	strs := make(pq.StringArray, len(set))
	for i, s := range set {
		strs[i] = string(s)
	}
	return strs.Value()
}

// Scan implements sql.Scanner for SkillSet.
func (set *SkillSet) Scan(src interface{}) error {
	var strs pq.StringArray
	if err := strs.Scan(src); err != nil {
		return fmt.Errorf("scanning skill set: %w", err)
	}
	out := make(SkillSet, len(strs))
	for i, s := range strs {
		out[i] = Skill(s)
	}
	*set = out
	return nil
}

// WeekdaySet is a set of en-GB weekdays backed by a Postgres text[] column.
type WeekdaySet []geo.Weekday

// Contains reports whether w is a member of the set.
func (set WeekdaySet) Contains(w geo.Weekday) bool {
	for _, known := range set {
		if known == w {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer so a WeekdaySet persists as text[].
func (set WeekdaySet) Value() (driver.Value, error) {
	strs := make(pq.StringArray, len(set))
	for i, w := range set {
		strs[i] = string(w)
	}
	return strs.Value()
}

// Scan implements sql.Scanner for WeekdaySet.
func (set *WeekdaySet) Scan(src interface{}) error {
	var strs pq.StringArray
	if err := strs.Scan(src); err != nil {
		return fmt.Errorf("scanning weekday set: %w", err)
	}
	out := make(WeekdaySet, len(strs))
	for i, s := range strs {
		out[i] = geo.Weekday(s)
	}
	*set = out
	return nil
}
