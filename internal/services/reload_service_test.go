package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admatch/internal/store"
	"admatch/internal/store/mocks"
)

func TestReloadService_ReloadAndBroadcast(t *testing.T) {
	reg, path := fileRegistry(t)
	require.NoError(t, os.WriteFile(path, []byte(nextTaxonomy), 0o644))

	bus := new(mocks.ReloadBus)
	bus.On("Publish", mock.Anything, mock.MatchedBy(func(n store.ReloadNotice) bool {
		return n.Origin == "node-a" && n.GraphVersion == "svc-2" && n.SnapshotID != ""
	})).Return(nil).Once()

	svc := NewReloadService(reg, bus, "node-a")
	out, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "svc-1", out.PreviousVersion)
	assert.Equal(t, "svc-2", out.GraphVersion)
	assert.Equal(t, 1, out.Edges)
	assert.True(t, out.Broadcast)
	assert.Equal(t, "svc-2", reg.Current().Version())
	bus.AssertExpectations(t)
}

func TestReloadService_BroadcastFailureKeepsLocalSwap(t *testing.T) {
	reg, path := fileRegistry(t)
	require.NoError(t, os.WriteFile(path, []byte(nextTaxonomy), 0o644))

	bus := new(mocks.ReloadBus)
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	out, err := NewReloadService(reg, bus, "node-a").Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Broadcast)
	assert.Equal(t, "svc-2", reg.Current().Version())
}

func TestReloadService_FailedReloadKeepsGraph(t *testing.T) {
	reg, path := fileRegistry(t)
	before := reg.Current()
	require.NoError(t, os.WriteFile(path, []byte("categories: {}\n"), 0o644))

	bus := new(mocks.ReloadBus)
	_, err := NewReloadService(reg, bus, "node-a").Reload(context.Background())
	assert.Error(t, err)
	assert.Same(t, before, reg.Current())
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestReloadService_WithoutBus(t *testing.T) {
	reg, _ := fileRegistry(t)
	svc := NewReloadService(reg, nil, "node-a")

	out, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Broadcast)

	assert.Error(t, svc.Listen(context.Background()))
}

func TestReloadService_ListenReloadsOnPeerNotice(t *testing.T) {
	reg, path := fileRegistry(t)
	require.NoError(t, os.WriteFile(path, []byte(nextTaxonomy), 0o644))

	bus := new(mocks.ReloadBus)
	bus.On("Subscribe", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		handle := args.Get(1).(func(store.ReloadNotice))

		handle(store.ReloadNotice{Origin: "node-a", GraphVersion: "svc-2"})
		assert.Equal(t, "svc-1", reg.Current().Version(), "own notices are ignored")

		handle(store.ReloadNotice{Origin: "node-b", GraphVersion: "svc-2"})
	}).Return(nil).Once()

	svc := NewReloadService(reg, bus, "node-a")
	require.NoError(t, svc.Listen(context.Background()))
	assert.Equal(t, "svc-2", reg.Current().Version())
	bus.AssertExpectations(t)
}
