package service

import (
	"context"
	"testing"

	"checkout-engine/internal/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestValidateCartAvailabilityReservesEveryLine(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)
	tote := e.createProduct(t, "Canvas Tote", "5.00", 10, 0)

	cart := e.cartFor(t, "user-1")
	e.addItem(t, cart.ID, tee.ID, 2)
	e.addItem(t, cart.ID, tote.ID, 3)

	err := e.db.Transaction(func(tx *gorm.DB) error {
		return e.reservations.ValidateCartAvailability(ctx, tx, cart.ID)
	})
	require.NoError(t, err)

	_, teeReserved := e.productState(t, tee.ID)
	_, toteReserved := e.productState(t, tote.ID)
	require.Equal(t, 2, teeReserved)
	require.Equal(t, 3, toteReserved)
}

func TestValidateCartAvailabilityIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)
	scarce := e.createProduct(t, "Limited Print", "20.00", 1, 1)

	cart := e.cartFor(t, "user-1")
	e.addItem(t, cart.ID, tee.ID, 2)
	e.addItem(t, cart.ID, scarce.ID, 1)

	err := e.db.Transaction(func(tx *gorm.DB) error {
		return e.reservations.ValidateCartAvailability(ctx, tx, cart.ID)
	})
	require.Error(t, err)
	require.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	require.Contains(t, err.Error(), "Limited Print")

	// the rollback must undo the tee reservation made before the failure
	_, teeReserved := e.productState(t, tee.ID)
	require.Equal(t, 0, teeReserved)
	_, scarceReserved := e.productState(t, scarce.ID)
	require.Equal(t, 1, scarceReserved)
}

func TestReleaseCartReservationReturnsUnits(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)

	cart := e.cartFor(t, "user-1")
	e.addItem(t, cart.ID, tee.ID, 3)

	require.NoError(t, e.db.Transaction(func(tx *gorm.DB) error {
		return e.reservations.ValidateCartAvailability(ctx, tx, cart.ID)
	}))

	require.NoError(t, e.reservations.ReleaseCartReservation(ctx, cart.ID))

	stock, reserved := e.productState(t, tee.ID)
	require.Equal(t, 10, stock)
	require.Equal(t, 0, reserved)
}

func TestReleaseCartReservationToleratesNothingReserved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)

	cart := e.cartFor(t, "user-1")
	e.addItem(t, cart.ID, tee.ID, 2)

	// never reserved; the guarded update refuses and the call stays nil
	require.NoError(t, e.reservations.ReleaseCartReservation(ctx, cart.ID))

	stock, reserved := e.productState(t, tee.ID)
	require.Equal(t, 10, stock)
	require.Equal(t, 0, reserved)
}
