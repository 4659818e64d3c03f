package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"communication-service/internal/mocks"
	"communication-service/internal/models"
	"communication-service/internal/service"
)

// recordingSink collects deliveries so concurrent fan-out runs can be
// asserted without mock call-order flakiness.
type recordingSink struct {
	mu         sync.Mutex
	recipients []int
	texts      []string
	fail       map[int]error
}

func (s *recordingSink) Deliver(ctx context.Context, recipientID int, text string, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[recipientID]; ok {
		return err
	}
	s.recipients = append(s.recipients, recipientID)
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSink) delivered() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]int(nil), s.recipients...)
	sort.Ints(out)
	return out
}

func TestFanoutNotifiesEveryoneExceptSender(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	sink := &recordingSink{}
	fanout := service.NewNotificationFanout(users, sink, 4, time.Second)

	users.On("ResolveName", mock.Anything, 1).Return("Alice", nil).Once()

	room := models.ChatRoom{ID: 7, Title: "Algebra study group", Participants: []int{1, 2, 3}}
	msg := models.Message{ID: 42, RoomID: 7, SenderID: 1, Content: "hello"}

	fanout.NotifyNewMessage(context.Background(), room, msg)

	assert.Equal(t, []int{2, 3}, sink.delivered())
	for _, text := range sink.texts {
		assert.Equal(t, "Alice sent a message in Algebra study group.", text)
	}
	users.AssertExpectations(t)
}

func TestFanoutSoleParticipantDeliversNothing(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	sink := &recordingSink{}
	fanout := service.NewNotificationFanout(users, sink, 4, time.Second)

	users.On("ResolveName", mock.Anything, 1).Return("Alice", nil).Once()

	room := models.ChatRoom{ID: 7, Participants: []int{1}}
	fanout.NotifyNewMessage(context.Background(), room, models.Message{ID: 1, RoomID: 7, SenderID: 1})

	assert.Empty(t, sink.delivered())
}

func TestFanoutUnresolvedSenderUsesPlaceholder(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	sink := &recordingSink{}
	fanout := service.NewNotificationFanout(users, sink, 4, time.Second)

	users.On("ResolveName", mock.Anything, 1).Return("", assert.AnError).Once()

	room := models.ChatRoom{ID: 7, Title: "Algebra", Participants: []int{1, 2}}
	fanout.NotifyNewMessage(context.Background(), room, models.Message{ID: 1, RoomID: 7, SenderID: 1})

	assert.Equal(t, []int{2}, sink.delivered())
	assert.Equal(t, "Unknown User sent a message in Algebra.", sink.texts[0])
}

func TestFanoutUntitledRoomFallsBack(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	sink := &recordingSink{}
	fanout := service.NewNotificationFanout(users, sink, 4, time.Second)

	users.On("ResolveName", mock.Anything, 1).Return("Alice", nil).Once()

	room := models.ChatRoom{ID: 7, Participants: []int{1, 2}}
	fanout.NotifyNewMessage(context.Background(), room, models.Message{ID: 1, RoomID: 7, SenderID: 1})

	assert.Equal(t, "Alice sent a message in the course chat.", sink.texts[0])
}

func TestFanoutFailureDoesNotBlockOthers(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	sink := &recordingSink{fail: map[int]error{3: assert.AnError}}
	fanout := service.NewNotificationFanout(users, sink, 4, time.Second)

	users.On("ResolveName", mock.Anything, 1).Return("Alice", nil).Once()

	room := models.ChatRoom{ID: 7, Title: "Algebra", Participants: []int{1, 2, 3, 4}}
	fanout.NotifyNewMessage(context.Background(), room, models.Message{ID: 1, RoomID: 7, SenderID: 1})

	assert.Equal(t, []int{2, 4}, sink.delivered())
}

func TestFanoutLargeRoomDeliversExactlyOnceEach(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	sink := &recordingSink{}
	fanout := service.NewNotificationFanout(users, sink, 2, time.Second)

	users.On("ResolveName", mock.Anything, 1).Return("Alice", nil).Once()

	participants := make([]int, 0, 25)
	want := make([]int, 0, 24)
	for i := 1; i <= 25; i++ {
		participants = append(participants, i)
		if i != 1 {
			want = append(want, i)
		}
	}
	room := models.ChatRoom{ID: 7, Title: "Algebra", Participants: participants}
	fanout.NotifyNewMessage(context.Background(), room, models.Message{ID: 1, RoomID: 7, SenderID: 1})

	assert.Equal(t, want, sink.delivered())
}
