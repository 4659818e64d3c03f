package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"communication-service/internal/mocks"
	"communication-service/internal/models"
	"communication-service/internal/repositories"
	"communication-service/internal/service"
)

func TestAppendMessageTriggersFanout(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	fanout := new(mocks.FanoutMock)
	appender := service.NewAppender(rooms, messages, fanout, time.Second)

	room := models.ChatRoom{ID: 7, Type: models.RoomTypeGroup, CourseID: 4, Title: "Algebra", Participants: []int{1, 2, 3}}
	stored := models.Message{ID: 42, RoomID: 7, SenderID: 1, Content: "hello"}

	rooms.On("GetRoom", mock.Anything, 7).Return(room, nil).Once()
	messages.On("AppendMessage", mock.Anything, 7, 1, "hello").Return(stored, nil).Once()
	fanout.On("NotifyNewMessage", mock.Anything, room, stored).Once()

	msg, err := appender.AppendMessage(context.Background(), 7, 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, 42, msg.ID)

	rooms.AssertExpectations(t)
	messages.AssertExpectations(t)
	fanout.AssertExpectations(t)
}

func TestAppendMessageEmptyContent(t *testing.T) {
	appender := service.NewAppender(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.FanoutMock), time.Second)

	_, err := appender.AppendMessage(context.Background(), 7, 1, "   ")
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestAppendMessageRoomNotFound(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	fanout := new(mocks.FanoutMock)
	appender := service.NewAppender(rooms, new(mocks.MessageRepositoryMock), fanout, time.Second)

	rooms.On("GetRoom", mock.Anything, 99).Return(models.ChatRoom{}, repositories.ErrRoomNotFound).Once()

	_, err := appender.AppendMessage(context.Background(), 99, 1, "hello")
	require.ErrorIs(t, err, repositories.ErrRoomNotFound)
	fanout.AssertNotCalled(t, "NotifyNewMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessageSenderNotParticipant(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	appender := service.NewAppender(rooms, messages, new(mocks.FanoutMock), time.Second)

	room := models.ChatRoom{ID: 7, Participants: []int{2, 3}}
	rooms.On("GetRoom", mock.Anything, 7).Return(room, nil).Once()

	_, err := appender.AppendMessage(context.Background(), 7, 1, "hello")
	require.ErrorIs(t, err, service.ErrValidation)
	messages.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessageStoreFailureSkipsFanout(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	fanout := new(mocks.FanoutMock)
	appender := service.NewAppender(rooms, messages, fanout, time.Second)

	room := models.ChatRoom{ID: 7, Participants: []int{1, 2}}
	rooms.On("GetRoom", mock.Anything, 7).Return(room, nil).Once()
	messages.On("AppendMessage", mock.Anything, 7, 1, "hello").Return(models.Message{}, assert.AnError).Once()

	_, err := appender.AppendMessage(context.Background(), 7, 1, "hello")
	require.Error(t, err)
	fanout.AssertNotCalled(t, "NotifyNewMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessageFanoutContextOutlivesRequest(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	fanout := new(mocks.FanoutMock)
	appender := service.NewAppender(rooms, messages, fanout, time.Second)

	room := models.ChatRoom{ID: 7, Participants: []int{1, 2}}
	stored := models.Message{ID: 1, RoomID: 7, SenderID: 1, Content: "hi"}

	rooms.On("GetRoom", mock.Anything, 7).Return(room, nil).Once()
	messages.On("AppendMessage", mock.Anything, 7, 1, "hi").Return(stored, nil).Once()
	fanout.On("NotifyNewMessage", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), room, stored).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := appender.AppendMessage(ctx, 7, 1, "hi")
	require.NoError(t, err)
	fanout.AssertExpectations(t)
}
