package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockConfRoomRepository struct {
	mock.Mock
}

func (m *MockConfRoomRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockConfRoomRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockConfRoomRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockConfRoomRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockConfRoomRepository) UpdateProfile(params UpdateProfileParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockConfRoomRepository) SetRole(accountId int, role string) error {
	args := m.Called(accountId, role)
	return args.Error(0)
}
func (m *MockConfRoomRepository) SetPremium(accountId int, expiresAt time.Time) (User, error) {
	args := m.Called(accountId, expiresAt)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockConfRoomRepository) ExpirePremium(now time.Time, limit int) (int, error) {
	args := m.Called(now, limit)
	return args.Int(0), args.Error(1)
}
func (m *MockConfRoomRepository) SaveVerificationCode(accountId int, codeHash string, expiresAt time.Time) error {
	args := m.Called(accountId, codeHash, expiresAt)
	return args.Error(0)
}
func (m *MockConfRoomRepository) ConsumeVerificationCode(accountId int, now time.Time) (User, error) {
	args := m.Called(accountId, now)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockConfRoomRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockConfRoomRepository) GetRoomByExternalId(externalId string) (Room, error) {
	args := m.Called(externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockConfRoomRepository) GetRoomDetails(roomId int) (RoomDetails, error) {
	args := m.Called(roomId)
	return args.Get(0).(RoomDetails), args.Error(1)
}
func (m *MockConfRoomRepository) ListRooms(activeOnly bool) ([]RoomDetails, error) {
	args := m.Called(activeOnly)
	return args.Get(0).([]RoomDetails), args.Error(1)
}
func (m *MockConfRoomRepository) ToggleRoomStatus(roomId int) (bool, error) {
	args := m.Called(roomId)
	return args.Bool(0), args.Error(1)
}
func (m *MockConfRoomRepository) DeleteRoom(roomId int) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockConfRoomRepository) UpsertParticipant(roomId, accountId int) (Participant, error) {
	args := m.Called(roomId, accountId)
	return args.Get(0).(Participant), args.Error(1)
}
func (m *MockConfRoomRepository) DeactivateParticipant(roomId, accountId int) error {
	args := m.Called(roomId, accountId)
	return args.Error(0)
}
func (m *MockConfRoomRepository) ListParticipants(roomId int) ([]ParticipantUser, error) {
	args := m.Called(roomId)
	return args.Get(0).([]ParticipantUser), args.Error(1)
}
func (m *MockConfRoomRepository) SetLastSeenMessage(roomId, accountId, messageId int) error {
	args := m.Called(roomId, accountId, messageId)
	return args.Error(0)
}
func (m *MockConfRoomRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockConfRoomRepository) GetMessageById(messageId int) (Message, error) {
	args := m.Called(messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockConfRoomRepository) UpdateMessageText(messageId int, text string) (Message, error) {
	args := m.Called(messageId, text)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockConfRoomRepository) DeleteMessage(messageId int) error {
	args := m.Called(messageId)
	return args.Error(0)
}
func (m *MockConfRoomRepository) ListRoomMessages(roomId, limit int) ([]MessageDetails, error) {
	args := m.Called(roomId, limit)
	return args.Get(0).([]MessageDetails), args.Error(1)
}
func (m *MockConfRoomRepository) ListReactions(messageIds []int) ([]ReactionUser, error) {
	args := m.Called(messageIds)
	return args.Get(0).([]ReactionUser), args.Error(1)
}
func (m *MockConfRoomRepository) ToggleReaction(messageId, accountId int, emoji string) (bool, error) {
	args := m.Called(messageId, accountId, emoji)
	return args.Bool(0), args.Error(1)
}
func (m *MockConfRoomRepository) DeleteMessagesBefore(cutoff time.Time, limit int) (int, error) {
	args := m.Called(cutoff, limit)
	return args.Int(0), args.Error(1)
}
