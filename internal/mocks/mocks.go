package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"communication-service/internal/directory"
	"communication-service/internal/models"
	"communication-service/internal/rabbitmq"
	"communication-service/internal/repositories"
	"communication-service/internal/service"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, roomType string, courseID int, title string, participants []int) (models.ChatRoom, error) {
	args := m.Called(ctx, roomType, courseID, title, participants)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) AppendMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, roomID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, recipientID int, text string, kind string) (models.Notification, error) {
	args := m.Called(ctx, recipientID, text, kind)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForRecipient(ctx context.Context, recipientID int) ([]models.Notification, error) {
	args := m.Called(ctx, recipientID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID int, recipientID int) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

type UserDirectoryMock struct {
	mock.Mock
}

func (m *UserDirectoryMock) ResolveName(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *UserDirectoryMock) BulkNames(ctx context.Context, userIDs []int) (map[int]string, error) {
	args := m.Called(ctx, userIDs)
	var names map[int]string
	if val := args.Get(0); val != nil {
		names = val.(map[int]string)
	}
	return names, args.Error(1)
}

func (m *UserDirectoryMock) AttachChat(ctx context.Context, userID int, roomID int) error {
	args := m.Called(ctx, userID, roomID)
	return args.Error(0)
}

type CourseDirectoryMock struct {
	mock.Mock
}

func (m *CourseDirectoryMock) Exists(ctx context.Context, courseID int) (bool, error) {
	args := m.Called(ctx, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *CourseDirectoryMock) ResolveTitle(ctx context.Context, courseID int) (string, error) {
	args := m.Called(ctx, courseID)
	return args.String(0), args.Error(1)
}

func (m *CourseDirectoryMock) AttachChat(ctx context.Context, courseID int, roomID int) error {
	args := m.Called(ctx, courseID, roomID)
	return args.Error(0)
}

type NotificationSinkMock struct {
	mock.Mock
}

func (m *NotificationSinkMock) Deliver(ctx context.Context, recipientID int, text string, kind string) error {
	args := m.Called(ctx, recipientID, text, kind)
	return args.Error(0)
}

type FanoutMock struct {
	mock.Mock
}

func (m *FanoutMock) NotifyNewMessage(ctx context.Context, room models.ChatRoom, msg models.Message) {
	m.Called(ctx, room, msg)
}

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) CreateRoom(ctx context.Context, roomType string, participants []int, courseID int, title string) (models.ChatRoom, error) {
	args := m.Called(ctx, roomType, participants, courseID, title)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

type AppenderMock struct {
	mock.Mock
}

func (m *AppenderMock) AppendMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type ProjectorMock struct {
	mock.Mock
}

func (m *ProjectorMock) RoomHistory(ctx context.Context, roomID int) (models.RoomView, error) {
	args := m.Called(ctx, roomID)
	var view models.RoomView
	if val := args.Get(0); val != nil {
		view = val.(models.RoomView)
	}
	return view, args.Error(1)
}

func (m *ProjectorMock) RoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

type GuardMock struct {
	mock.Mock
}

func (m *GuardMock) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ directory.UserDirectory = (*UserDirectoryMock)(nil)
var _ directory.CourseDirectory = (*CourseDirectoryMock)(nil)
var _ service.NotificationSink = (*NotificationSinkMock)(nil)
var _ rabbitmq.Publisher = (*PublisherMock)(nil)
var _ service.Fanout = (*FanoutMock)(nil)
var _ interface {
	CreateRoom(context.Context, string, []int, int, string) (models.ChatRoom, error)
} = (*RegistryMock)(nil)
var _ interface {
	AppendMessage(context.Context, int, int, string) (models.Message, error)
} = (*AppenderMock)(nil)
var _ interface {
	RoomHistory(context.Context, int) (models.RoomView, error)
	RoomsForUser(context.Context, int) ([]models.RoomSummary, error)
} = (*ProjectorMock)(nil)
var _ interface {
	IsParticipant(context.Context, int, int) (bool, error)
} = (*GuardMock)(nil)
