package engine

import "fmt"

const (
	DaysPerMonth = 30
	DaysPerYear  = 360
	// StartYear is the calendar year of tick zero.
	StartYear = 2200
)

// SimTime is a simulation date. One tick is one day.
type SimTime struct {
	Days uint64
}

func (t SimTime) Year() uint64  { return StartYear + t.Days/DaysPerYear }
func (t SimTime) Month() uint64 { return t.Days%DaysPerYear/DaysPerMonth + 1 }
func (t SimTime) Day() uint64   { return t.Days%DaysPerMonth + 1 }

func (t SimTime) String() string {
	return fmt.Sprintf("%04d.%02d.%02d", t.Year(), t.Month(), t.Day())
}
