package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"grwcomm/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) BulkByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var out []models.User
	if val := args.Get(0); val != nil {
		out = val.([]models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var out models.Profile
	if val := args.Get(0); val != nil {
		out = val.(models.Profile)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type CategoryRepositoryMock struct {
	mock.Mock
}

func (m *CategoryRepositoryMock) Create(ctx context.Context, cat models.MessageCategory) (models.MessageCategory, error) {
	args := m.Called(ctx, cat)
	var out models.MessageCategory
	if val := args.Get(0); val != nil {
		out = val.(models.MessageCategory)
	}
	return out, args.Error(1)
}

func (m *CategoryRepositoryMock) GetByID(ctx context.Context, categoryID int) (models.MessageCategory, error) {
	args := m.Called(ctx, categoryID)
	var out models.MessageCategory
	if val := args.Get(0); val != nil {
		out = val.(models.MessageCategory)
	}
	return out, args.Error(1)
}

func (m *CategoryRepositoryMock) ListByOwner(ctx context.Context, ownerID int, activeOnly bool) ([]models.MessageCategory, error) {
	args := m.Called(ctx, ownerID, activeOnly)
	var out []models.MessageCategory
	if val := args.Get(0); val != nil {
		out = val.([]models.MessageCategory)
	}
	return out, args.Error(1)
}

func (m *CategoryRepositoryMock) Update(ctx context.Context, cat models.MessageCategory) (models.MessageCategory, error) {
	args := m.Called(ctx, cat)
	var out models.MessageCategory
	if val := args.Get(0); val != nil {
		out = val.(models.MessageCategory)
	}
	return out, args.Error(1)
}

func (m *CategoryRepositoryMock) Delete(ctx context.Context, ownerID, categoryID int) error {
	args := m.Called(ctx, ownerID, categoryID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID, receiverID int, categoryID *int, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, categoryID, content)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) GetConversation(ctx context.Context, userID, peerID int, categoryID *int, limit int) ([]models.Message, error) {
	args := m.Called(ctx, userID, peerID, categoryID, limit)
	var out []models.Message
	if val := args.Get(0); val != nil {
		out = val.([]models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var out []models.ConversationSummary
	if val := args.Get(0); val != nil {
		out = val.([]models.ConversationSummary)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, userID, peerID int, categoryID *int) (int64, error) {
	args := m.Called(ctx, userID, peerID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) MarkMessageRead(ctx context.Context, messageID, receiverID int) error {
	args := m.Called(ctx, messageID, receiverID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) HasConversation(ctx context.Context, userA, userB int, categoryID *int) (bool, error) {
	args := m.Called(ctx, userA, userB, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountFrom(ctx context.Context, senderID, receiverID int, categoryID *int) (int, error) {
	args := m.Called(ctx, senderID, receiverID, categoryID)
	return args.Int(0), args.Error(1)
}

type BookingRepositoryMock struct {
	mock.Mock
}

func (m *BookingRepositoryMock) CanSend(ctx context.Context, senderID, receiverID, categoryID int) (models.Decision, error) {
	args := m.Called(ctx, senderID, receiverID, categoryID)
	var out models.Decision
	if val := args.Get(0); val != nil {
		out = val.(models.Decision)
	}
	return out, args.Error(1)
}

func (m *BookingRepositoryMock) BookSlot(ctx context.Context, senderID, receiverID, categoryID int, content string) (*models.SlotBooking, *models.Message, models.Decision, error) {
	args := m.Called(ctx, senderID, receiverID, categoryID, content)
	var booking *models.SlotBooking
	if val := args.Get(0); val != nil {
		booking = val.(*models.SlotBooking)
	}
	var msg *models.Message
	if val := args.Get(1); val != nil {
		msg = val.(*models.Message)
	}
	var decision models.Decision
	if val := args.Get(2); val != nil {
		decision = val.(models.Decision)
	}
	return booking, msg, decision, args.Error(3)
}

func (m *BookingRepositoryMock) GetAvailability(ctx context.Context, ownerID, requesterID int) ([]models.SlotAvailability, error) {
	args := m.Called(ctx, ownerID, requesterID)
	var out []models.SlotAvailability
	if val := args.Get(0); val != nil {
		out = val.([]models.SlotAvailability)
	}
	return out, args.Error(1)
}

func (m *BookingRepositoryMock) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type CreditRepositoryMock struct {
	mock.Mock
}

func (m *CreditRepositoryMock) GetOrCreate(ctx context.Context, userID int) (models.CreditAccount, error) {
	args := m.Called(ctx, userID)
	var out models.CreditAccount
	if val := args.Get(0); val != nil {
		out = val.(models.CreditAccount)
	}
	return out, args.Error(1)
}

func (m *CreditRepositoryMock) AddCredits(ctx context.Context, userID, amount int, isBonus bool, grantedBy int) (models.CreditAccount, error) {
	args := m.Called(ctx, userID, amount, isBonus, grantedBy)
	var out models.CreditAccount
	if val := args.Get(0); val != nil {
		out = val.(models.CreditAccount)
	}
	return out, args.Error(1)
}

func (m *CreditRepositoryMock) SweepWeeklyResets(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *CreditRepositoryMock) ListTransactions(ctx context.Context, userID, limit int) ([]models.CreditTransaction, error) {
	args := m.Called(ctx, userID, limit)
	var out []models.CreditTransaction
	if val := args.Get(0); val != nil {
		out = val.([]models.CreditTransaction)
	}
	return out, args.Error(1)
}

type RevelationRepositoryMock struct {
	mock.Mock
}

func (m *RevelationRepositoryMock) HasRevealed(ctx context.Context, revealerID, revealedToID int, categoryID *int) (bool, error) {
	args := m.Called(ctx, revealerID, revealedToID, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *RevelationRepositoryMock) Reveal(ctx context.Context, revealerID, revealedToID int, categoryID *int) (models.IdentityRevelation, bool, error) {
	args := m.Called(ctx, revealerID, revealedToID, categoryID)
	var out models.IdentityRevelation
	if val := args.Get(0); val != nil {
		out = val.(models.IdentityRevelation)
	}
	return out, args.Bool(1), args.Error(2)
}

type ReportRepositoryMock struct {
	mock.Mock
}

func (m *ReportRepositoryMock) CreateReport(ctx context.Context, report models.MessageReport) (models.MessageReport, models.ChatBlock, error) {
	args := m.Called(ctx, report)
	var outReport models.MessageReport
	if val := args.Get(0); val != nil {
		outReport = val.(models.MessageReport)
	}
	var outBlock models.ChatBlock
	if val := args.Get(1); val != nil {
		outBlock = val.(models.ChatBlock)
	}
	return outReport, outBlock, args.Error(2)
}

func (m *ReportRepositoryMock) IsBlocked(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *ReportRepositoryMock) GetBlock(ctx context.Context, blockID int) (models.ChatBlock, error) {
	args := m.Called(ctx, blockID)
	var out models.ChatBlock
	if val := args.Get(0); val != nil {
		out = val.(models.ChatBlock)
	}
	return out, args.Error(1)
}

func (m *ReportRepositoryMock) ListBlocks(ctx context.Context, unreviewedOnly bool) ([]models.ChatBlock, error) {
	args := m.Called(ctx, unreviewedOnly)
	var out []models.ChatBlock
	if val := args.Get(0); val != nil {
		out = val.([]models.ChatBlock)
	}
	return out, args.Error(1)
}

func (m *ReportRepositoryMock) ReviewBlock(ctx context.Context, blockID int, active *bool, notes string) (models.ChatBlock, error) {
	args := m.Called(ctx, blockID, active, notes)
	var out models.ChatBlock
	if val := args.Get(0); val != nil {
		out = val.(models.ChatBlock)
	}
	return out, args.Error(1)
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
