package get_available_slots

import (
	"errors"
	"strconv"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-PhysioBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

var errInvalidKind = errors.New("kind must be normal or analysis")

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date  string          `json:"date"`
	Slots []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	ID             int64  `json:"id"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Kind           string `json:"kind"`
	AvailableSpots int    `json:"availableSpots"`
	TotalSpots     int    `json:"totalSpots"`
}

// ToUseCaseRequest разбирает query параметры date, kind, onlyAvailable
func ToUseCaseRequest(dateStr, kindStr, onlyAvailableStr string) (*getAvailableSlots.Request, error) {
	date, err := types.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.Request{Date: date}
	if kindStr != "" {
		kind := domain.SlotKind(kindStr)
		if kind != domain.SlotKindNormal && kind != domain.SlotKindAnalysis {
			return nil, errInvalidKind
		}
		req.Kind = &kind
	}
	if onlyAvailableStr != "" {
		req.OnlyAvailable, err = strconv.ParseBool(onlyAvailableStr)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			ID:             slot.ID,
			StartTime:      slot.StartTime.String(),
			EndTime:        slot.EndTime.String(),
			Kind:           string(slot.Kind),
			AvailableSpots: slot.AvailableSpots,
			TotalSpots:     slot.TotalSpots,
		}
	}

	return &AvailableSlotsResponse{
		Date:  resp.Date.String(),
		Slots: slots,
	}
}
