package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"communication-service/internal/mocks"
	"communication-service/internal/models"
	"communication-service/internal/repositories"
	"communication-service/internal/service"
)

func TestGuardMember(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	guard := service.NewGuard(rooms)

	rooms.On("GetRoom", mock.Anything, 7).Return(models.ChatRoom{ID: 7, Participants: []int{1, 2}}, nil).Once()

	ok, err := guard.IsParticipant(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuardNonMember(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	guard := service.NewGuard(rooms)

	rooms.On("GetRoom", mock.Anything, 7).Return(models.ChatRoom{ID: 7, Participants: []int{1, 2}}, nil).Once()

	ok, err := guard.IsParticipant(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuardUnknownRoom(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	guard := service.NewGuard(rooms)

	rooms.On("GetRoom", mock.Anything, 99).Return(models.ChatRoom{}, repositories.ErrRoomNotFound).Once()

	_, err := guard.IsParticipant(context.Background(), 99, 1)
	require.ErrorIs(t, err, repositories.ErrRoomNotFound)
}
