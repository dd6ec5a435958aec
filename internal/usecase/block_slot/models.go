package block_slot

// Request запрос на блокировку или разблокировку слота
type Request struct {
	TimeslotID int64 `json:"timeslotId"`
	Blocked    bool  `json:"blocked"`
}

// Response состояние слота после изменения
type Response struct {
	TimeslotID  int64 `json:"timeslotId"`
	Blocked     bool  `json:"blocked"`
	BookedCount int   `json:"bookedCount"`
}
