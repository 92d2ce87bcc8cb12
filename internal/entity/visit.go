package entity

import "time"

// Visit is a single successful resolution of a short code.
type Visit struct {
	ID        int64
	URLID     int64
	IP        string
	Timestamp time.Time
}
