package config

// SeatingConfig bounds the input accepted by the seating endpoints.  The
// counter itself has no limit; the bounds keep responses small.
type SeatingConfig struct {
    MaxSeats     int // upper clamp for N
    DefaultSeats int // N used when the request omits it
    DefaultVIP   string
}

// LoadSeatingConfig reads SEATING_* variables.  Defaults reproduce the
// problem's sample (nine seats, VIP 4 and 7) and the 60 seat input cap.
func LoadSeatingConfig() SeatingConfig {
    c := SeatingConfig{
        MaxSeats:     envInt("SEATING_MAX_SEATS", 60),
        DefaultSeats: envInt("SEATING_DEFAULT_SEATS", 9),
        DefaultVIP:   envStr("SEATING_DEFAULT_VIP", "4,7"),
    }
    if c.MaxSeats < 1 { c.MaxSeats = 1 }
    if c.DefaultSeats < 1 { c.DefaultSeats = 1 }
    if c.DefaultSeats > c.MaxSeats { c.DefaultSeats = c.MaxSeats }
    return c
}

// Clamp forces n into [1, MaxSeats].
func (c SeatingConfig) Clamp(n int) int {
    if n < 1 { return 1 }
    if n > c.MaxSeats { return c.MaxSeats }
    return n
}
