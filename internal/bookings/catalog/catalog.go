// Package catalog holds the fixed list of bookable time-of-day slots and
// the clock arithmetic around them. Slots are kept in the 12-hour display
// form ("09:30 AM") because that string is the persisted value.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Slots lists every bookable half-hour mark, in day order.
var Slots = []string{
	"09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"12:00 PM", "12:30 PM", "01:00 PM", "01:30 PM", "02:00 PM",
	"02:30 PM", "03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
	"05:00 PM", "05:30 PM", "06:00 PM", "06:30 PM", "07:00 PM",
	"07:30 PM", "08:00 PM", "08:30 PM", "09:00 PM", "09:30 PM",
	"10:00 PM",
}

func Contains(slot string) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// ParseSlot converts a 12-hour clock slot label to a 24-hour clock.
// "12" rolls to 0 for AM; PM adds 12 for every hour except 12.
func ParseSlot(slot string) (hour, minute int, err error) {
	clock, modifier, ok := strings.Cut(slot, " ")
	if !ok || (modifier != "AM" && modifier != "PM") {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}

	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}

	hour, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed slot %q: %w", slot, err)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed slot %q: %w", slot, err)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("slot %q out of range", slot)
	}

	if hour == 12 && modifier == "AM" {
		hour = 0
	}
	if hour != 12 && modifier == "PM" {
		hour += 12
	}

	return hour, minute, nil
}

// SlotInstant combines an ISO calendar date with a slot label into the
// slot's start instant, in local time.
func SlotInstant(date, slot string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date %q: %w", date, err)
	}
	hour, minute, err := ParseSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local), nil
}

// IsPast reports whether a slot can no longer be booked. Future dates are
// never past, earlier dates always are; for today the slot is past once
// the wall clock reaches its start minute. A slot that fails to parse is
// treated as not past, matching the lenient behavior bookers relied on.
func IsPast(date, slot string, now time.Time) bool {
	today := now.Format(DateLayout)
	if date > today {
		return false
	}
	if date < today {
		return true
	}

	hour, minute, err := ParseSlot(slot)
	if err != nil {
		return false
	}

	if hour < now.Hour() {
		return true
	}
	if hour == now.Hour() && minute <= now.Minute() {
		return true
	}
	return false
}
