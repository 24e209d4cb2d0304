package model

// TwoSlot is a two-period time series: the value carried in from the previous
// period and the value for the current one.
type TwoSlot struct {
	Previous float64 `json:"previous" msgpack:"previous"`
	Current  float64 `json:"current" msgpack:"current"`
}

// Roll shifts Current into Previous and stores next as the new Current.
func (s *TwoSlot) Roll(next float64) {
	s.Previous = s.Current
	s.Current = next
}

// Change returns Current - Previous.
func (s TwoSlot) Change() float64 {
	return s.Current - s.Previous
}
