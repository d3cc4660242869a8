package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/internal/ws"
)

// Function-field fakes for the repository interfaces. Unset fields
// return zero values so each test only wires what it exercises.

type fakeUserRepo struct {
	CreateFn             func(ctx context.Context, user *models.User) error
	FindByIDFn           func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmailFn        func(ctx context.Context, email string) (*models.User, error)
	FindByUsernameFn     func(ctx context.Context, username string) (*models.User, error)
	FindPublicByIDsFn    func(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error)
	SearchFn             func(ctx context.Context, query string, skip, limit int64) ([]models.PublicUser, error)
	UpdateFn             func(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	AdjustFollowCountsFn func(ctx context.Context, followerID, followingID primitive.ObjectID, delta int) error
	SetSubscriptionFn    func(ctx context.Context, id primitive.ObjectID, sub *models.PushSubscription) error
	DeleteUnverifiedFn   func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.FindByEmailFn != nil {
		return f.FindByEmailFn(ctx, email)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.FindByUsernameFn != nil {
		return f.FindByUsernameFn(ctx, username)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error) {
	if f.FindPublicByIDsFn != nil {
		return f.FindPublicByIDsFn(ctx, ids)
	}
	return []models.PublicUser{}, nil
}

func (f *fakeUserRepo) Search(ctx context.Context, query string, skip, limit int64) ([]models.PublicUser, error) {
	if f.SearchFn != nil {
		return f.SearchFn(ctx, query, skip, limit)
	}
	return []models.PublicUser{}, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, fields)
	}
	return nil
}

func (f *fakeUserRepo) AdjustFollowCounts(ctx context.Context, followerID, followingID primitive.ObjectID, delta int) error {
	if f.AdjustFollowCountsFn != nil {
		return f.AdjustFollowCountsFn(ctx, followerID, followingID, delta)
	}
	return nil
}

func (f *fakeUserRepo) SetSubscription(ctx context.Context, id primitive.ObjectID, sub *models.PushSubscription) error {
	if f.SetSubscriptionFn != nil {
		return f.SetSubscriptionFn(ctx, id, sub)
	}
	return nil
}

func (f *fakeUserRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.DeleteUnverifiedFn != nil {
		return f.DeleteUnverifiedFn(ctx, cutoff)
	}
	return 0, nil
}

type fakeChatRepo struct {
	CreateFn             func(ctx context.Context, chat *models.Chat) error
	FindByIDFn           func(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindByUserFn         func(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
	FindDirectByPairFn   func(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	FindGroupByMembersFn func(ctx context.Context, memberIDs []primitive.ObjectID) (*models.Chat, error)
	UpdateLastMessageFn  func(ctx context.Context, chatID, messageID primitive.ObjectID) error
	AddMembersFn         func(ctx context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) error
	RemoveMemberFn       func(ctx context.Context, chatID, userID primitive.ObjectID) error
	RenameFn             func(ctx context.Context, chatID primitive.ObjectID, name, setBy string) error
}

func (f *fakeChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, chat)
	}
	chat.ID = primitive.NewObjectID()
	return nil
}

func (f *fakeChatRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeChatRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	if f.FindByUserFn != nil {
		return f.FindByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeChatRepo) FindDirectByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	if f.FindDirectByPairFn != nil {
		return f.FindDirectByPairFn(ctx, a, b)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeChatRepo) FindGroupByMembers(ctx context.Context, memberIDs []primitive.ObjectID) (*models.Chat, error) {
	if f.FindGroupByMembersFn != nil {
		return f.FindGroupByMembersFn(ctx, memberIDs)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeChatRepo) UpdateLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	if f.UpdateLastMessageFn != nil {
		return f.UpdateLastMessageFn(ctx, chatID, messageID)
	}
	return nil
}

func (f *fakeChatRepo) AddMembers(ctx context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) error {
	if f.AddMembersFn != nil {
		return f.AddMembersFn(ctx, chatID, userIDs)
	}
	return nil
}

func (f *fakeChatRepo) RemoveMember(ctx context.Context, chatID, userID primitive.ObjectID) error {
	if f.RemoveMemberFn != nil {
		return f.RemoveMemberFn(ctx, chatID, userID)
	}
	return nil
}

func (f *fakeChatRepo) Rename(ctx context.Context, chatID primitive.ObjectID, name, setBy string) error {
	if f.RenameFn != nil {
		return f.RenameFn(ctx, chatID, name, setBy)
	}
	return nil
}

type fakeMessageRepo struct {
	InsertFn       func(ctx context.Context, msg *models.Message) error
	FindByChatFn   func(ctx context.Context, chatID primitive.ObjectID, limit int64, before *time.Time) ([]models.Message, error)
	LastByChatFn   func(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error)
	MarkChatReadFn func(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error)
	MarkSeenFn     func(ctx context.Context, messageID, userID primitive.ObjectID) (*models.Message, error)
	UnreadCountsFn func(ctx context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) ([]models.UnreadCount, error)
}

func (f *fakeMessageRepo) Insert(ctx context.Context, msg *models.Message) error {
	if f.InsertFn != nil {
		return f.InsertFn(ctx, msg)
	}
	msg.ID = primitive.NewObjectID()
	return nil
}

func (f *fakeMessageRepo) FindByChat(ctx context.Context, chatID primitive.ObjectID, limit int64, before *time.Time) ([]models.Message, error) {
	if f.FindByChatFn != nil {
		return f.FindByChatFn(ctx, chatID, limit, before)
	}
	return nil, nil
}

func (f *fakeMessageRepo) LastByChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error) {
	if f.LastByChatFn != nil {
		return f.LastByChatFn(ctx, chatID)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeMessageRepo) MarkChatRead(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	if f.MarkChatReadFn != nil {
		return f.MarkChatReadFn(ctx, chatID, userID)
	}
	return 0, nil
}

func (f *fakeMessageRepo) MarkSeen(ctx context.Context, messageID, userID primitive.ObjectID) (*models.Message, error) {
	if f.MarkSeenFn != nil {
		return f.MarkSeenFn(ctx, messageID, userID)
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeMessageRepo) UnreadCounts(ctx context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) ([]models.UnreadCount, error) {
	if f.UnreadCountsFn != nil {
		return f.UnreadCountsFn(ctx, chatIDs, userID)
	}
	return []models.UnreadCount{}, nil
}

type fakeFollowRepo struct {
	CreateFn          func(ctx context.Context, follow *models.Follow) error
	DeleteFn          func(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error)
	ExistsFn          func(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error)
	FollowingIDsFn    func(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	FollowerIDsFn     func(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	FollowerIDsPgFn   func(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error)
	FollowingIDsPgFn  func(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error)
}

func (f *fakeFollowRepo) Create(ctx context.Context, follow *models.Follow) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, follow)
	}
	return nil
}

func (f *fakeFollowRepo) Delete(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (f *fakeFollowRepo) Exists(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	if f.ExistsFn != nil {
		return f.ExistsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (f *fakeFollowRepo) FollowingIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if f.FollowingIDsFn != nil {
		return f.FollowingIDsFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeFollowRepo) FollowerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if f.FollowerIDsFn != nil {
		return f.FollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeFollowRepo) FollowerIDsPage(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error) {
	if f.FollowerIDsPgFn != nil {
		return f.FollowerIDsPgFn(ctx, userID, skip, limit)
	}
	return nil, nil
}

func (f *fakeFollowRepo) FollowingIDsPage(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error) {
	if f.FollowingIDsPgFn != nil {
		return f.FollowingIDsPgFn(ctx, userID, skip, limit)
	}
	return nil, nil
}

type fakeNotificationRepo struct {
	UpsertFollowFn func(ctx context.Context, notif *models.Notification) error
	FindByUserFn   func(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAllReadFn  func(ctx context.Context, userID primitive.ObjectID) error
}

func (f *fakeNotificationRepo) UpsertFollow(ctx context.Context, notif *models.Notification) error {
	if f.UpsertFollowFn != nil {
		return f.UpsertFollowFn(ctx, notif)
	}
	return nil
}

func (f *fakeNotificationRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	if f.FindByUserFn != nil {
		return f.FindByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	if f.MarkAllReadFn != nil {
		return f.MarkAllReadFn(ctx, userID)
	}
	return nil
}

type fakeCodeRepo struct {
	codes  map[string]string
	resets map[string]string
	resend int64
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[string]string{}, resets: map[string]string{}}
}

func (f *fakeCodeRepo) SetVerificationCode(_ context.Context, email, code string, _ time.Duration) error {
	f.codes[email] = code
	return nil
}

func (f *fakeCodeRepo) GetVerificationCode(_ context.Context, email string) (string, error) {
	return f.codes[email], nil
}

func (f *fakeCodeRepo) DeleteVerificationCode(_ context.Context, email string) error {
	delete(f.codes, email)
	return nil
}

func (f *fakeCodeRepo) SetResetCode(_ context.Context, email, code string, _ time.Duration) error {
	f.resets[email] = code
	return nil
}

func (f *fakeCodeRepo) GetResetCode(_ context.Context, email string) (string, error) {
	return f.resets[email], nil
}

func (f *fakeCodeRepo) DeleteResetCode(_ context.Context, email string) error {
	delete(f.resets, email)
	return nil
}

func (f *fakeCodeRepo) IncrResend(_ context.Context, _ string, _ time.Duration) (int64, error) {
	f.resend++
	return f.resend, nil
}

func (f *fakeCodeRepo) CheckRateLimit(_ context.Context, _ string, limit int, _ time.Duration) (bool, error) {
	return true, nil
}

// fakeNotifier records every live event a service emits.
type sentEvent struct {
	UserID  string
	Room    string
	Type    ws.EventType
	Payload any
}

type fakeNotifier struct {
	online map[string]bool
	sent   []sentEvent
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{online: map[string]bool{}}
}

func (f *fakeNotifier) SendToUser(userID string, t ws.EventType, payload any) bool {
	f.sent = append(f.sent, sentEvent{UserID: userID, Type: t, Payload: payload})
	return f.online[userID]
}

func (f *fakeNotifier) BroadcastToRoom(roomID string, t ws.EventType, payload any) {
	f.sent = append(f.sent, sentEvent{Room: roomID, Type: t, Payload: payload})
}

func (f *fakeNotifier) IsOnline(userID string) bool {
	return f.online[userID]
}

type fakeDispatcher struct {
	dispatched []string
	err        error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, userID string, _ *models.PushSubscription, _ *models.SendMessageRequest) error {
	f.dispatched = append(f.dispatched, userID)
	return f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.sent = append(f.sent, to)
	return f.err
}
