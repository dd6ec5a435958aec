package block_slot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

func TestExecute_BlockAndUnblock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.Options{})
	day := types.MustDate("2026-10-15")
	_, err := store.Timeslots().InsertIfAbsent(ctx, domain.TimeslotSpec{
		Day:       day,
		StartTime: types.MustTimeString("09:00"),
		EndTime:   types.MustTimeString("09:30"),
		Capacity:  6,
		Kind:      domain.SlotKindNormal,
	})
	require.NoError(t, err)
	slots, err := store.Timeslots().ListByDay(ctx, day)
	require.NoError(t, err)

	uc := NewUseCase(store.Timeslots(), store.TxManager(), logger.NewNop())

	resp, err := uc.Execute(ctx, &Request{TimeslotID: slots[0].ID, Blocked: true})
	require.NoError(t, err)
	assert.True(t, resp.Blocked)

	slot, err := store.Timeslots().GetByID(ctx, slots[0].ID)
	require.NoError(t, err)
	assert.True(t, slot.IsBlocked)

	_, err = uc.Execute(ctx, &Request{TimeslotID: slots[0].ID, Blocked: false})
	require.NoError(t, err)
	slot, err = store.Timeslots().GetByID(ctx, slots[0].ID)
	require.NoError(t, err)
	assert.False(t, slot.IsBlocked)
}

func TestExecute_Errors(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	uc := NewUseCase(store.Timeslots(), store.TxManager(), logger.NewNop())

	_, err := uc.Execute(context.Background(), &Request{TimeslotID: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{TimeslotID: 42, Blocked: true})
	require.ErrorIs(t, err, domain.ErrSlotNotFound)
}
