package block_slot

// BlockSlotRequest тело запроса
type BlockSlotRequest struct {
	Blocked *bool `json:"blocked"`
}
