package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/testutil"
)

func newStore(t *testing.T) *repository.GormStore {
	store := repository.NewGormStore(testutil.OpenTestDB(t))
	require.NoError(t, store.SeedSeats(context.Background(), models.SeatRoster(2, 2)))
	return store
}

func TestSeedSeatsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)
	require.NoError(t, store.ReassignSeat(ctx, "A1", user.ID, 1000, nil))

	require.NoError(t, store.SeedSeats(ctx, models.SeatRoster(2, 2)))

	seats, err := store.ListSeats(ctx)
	require.NoError(t, err)
	assert.Len(t, seats, 4)

	seat, err := store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, seat.Occupied, "reseeding must not reset occupancy")
}

func TestUserClientBinding(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	alice, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)

	_, err = store.GetUserByClientID(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.UpdateUserClientID(ctx, alice.ID, "c1"))
	got, err := store.GetUserByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	// moving alice to another client drops the old binding
	require.NoError(t, store.UpdateUserClientID(ctx, alice.ID, "c2"))
	_, err = store.GetUserByClientID(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	clientID, err := store.GetClientIDByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "c2", clientID)

	// rebinding c2 to bob leaves alice without a session
	bob, err := store.CreateUser(ctx, "bob", 0)
	require.NoError(t, err)
	require.NoError(t, store.UpdateUserClientID(ctx, bob.ID, "c2"))
	_, err = store.GetClientIDByUserID(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUserBalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)

	earned := int64(5000)
	balance, err := store.UpdateUserBalance(ctx, user.ID, 100, &earned)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	_, err = store.UpdateUserBalance(ctx, user.ID, -101, nil)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	balance, err = store.UpdateUserBalance(ctx, user.ID, -80, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Balance)
	assert.Equal(t, int64(5000), got.LastEarned, "debits keep lastEarned")

	_, err = store.UpdateUserBalance(ctx, 999, 10, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReassignSeatFreesPreviousSeat(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)

	require.NoError(t, store.ReassignSeat(ctx, "A1", user.ID, 1000, []uint{user.ID}))
	require.NoError(t, store.ReassignSeat(ctx, "B2", user.ID, 2000, []uint{user.ID}))

	a1, err := store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, a1.Occupied)
	assert.Nil(t, a1.UserID)
	assert.Nil(t, a1.Time)

	b2, err := store.GetSeat(ctx, "B2")
	require.NoError(t, err)
	assert.True(t, b2.Occupied)
	require.NotNil(t, b2.UserID)
	assert.Equal(t, user.ID, *b2.UserID)
	require.NotNil(t, b2.Time)
	assert.Equal(t, int64(2000), *b2.Time)
}

func TestReassignSeatRollsBackWhenTaken(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	alice, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob", 0)
	require.NoError(t, err)

	require.NoError(t, store.ReassignSeat(ctx, "A1", alice.ID, 1000, nil))
	require.NoError(t, store.ReassignSeat(ctx, "A2", bob.ID, 1000, nil))

	err = store.ReassignSeat(ctx, "A1", bob.ID, 2000, []uint{bob.ID})
	assert.ErrorIs(t, err, repository.ErrSeatTaken)

	a2, err := store.GetSeat(ctx, "A2")
	require.NoError(t, err)
	assert.True(t, a2.Occupied, "bob keeps his seat when the move fails")
}

func TestFreeSeatsByUser(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)

	freed, err := store.FreeSeatsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, freed)

	require.NoError(t, store.ReassignSeat(ctx, "A2", user.ID, 1000, nil))
	freed, err = store.FreeSeatsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, freed)
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)
	require.NoError(t, store.UpdateUserClientID(ctx, user.ID, "c1"))

	order := &models.Order{UserID: user.ID, ItemKey: "WATER", Price: 0, DeliveredAt: 1500, Capacity: 5}
	require.NoError(t, store.CreateOrder(ctx, order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	orders, err := store.GetOrdersByClientID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	none, err := store.GetOrdersByClientID(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.UpdateOrderCapacity(ctx, order.ID, 4))
	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Capacity)

	pending, err := store.GetPendingOrders(ctx, 1000)
	require.NoError(t, err)
	assert.Empty(t, pending, "not due yet")

	pending, err = store.GetPendingOrders(ctx, 1500)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c1", pending[0].ClientID)

	claimed, err := store.UpdateOrderStatusToDelivered(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.UpdateOrderStatusToDelivered(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "a delivered order cannot be claimed twice")

	require.NoError(t, store.DeleteOrder(ctx, order.ID))
	_, err = store.GetOrderByID(ctx, order.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPendingOrdersWithoutSession(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)
	require.NoError(t, store.CreateOrder(ctx, &models.Order{UserID: user.ID, ItemKey: "WATER", DeliveredAt: 10, Capacity: 5}))

	pending, err := store.GetPendingOrders(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Empty(t, pending[0].ClientID)
}

func TestDeleteOrdersByClientID(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	alice, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob", 0)
	require.NoError(t, err)
	require.NoError(t, store.UpdateUserClientID(ctx, alice.ID, "c1"))
	require.NoError(t, store.UpdateUserClientID(ctx, bob.ID, "c2"))

	for _, uid := range []uint{alice.ID, alice.ID, bob.ID} {
		require.NoError(t, store.CreateOrder(ctx, &models.Order{UserID: uid, ItemKey: "WATER", DeliveredAt: 1, Capacity: 5}))
	}

	deleted, err := store.DeleteOrdersByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	left, err := store.GetOrdersByClientID(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestUpdateUserBalanceZeroDeltaAtZero(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	user, err := store.CreateUser(ctx, "alice", 0)
	require.NoError(t, err)

	earned := int64(1000)
	for i := 0; i < 2; i++ {
		balance, err := store.UpdateUserBalance(ctx, user.ID, 0, &earned)
		require.NoError(t, err, "a free item never fails the balance guard")
		assert.Zero(t, balance)
	}

	_, err = store.UpdateUserBalance(ctx, user.ID, -1, &earned)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
}
