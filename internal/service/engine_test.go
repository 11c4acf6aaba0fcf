package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gift_watcher/internal/domain"
	"gift_watcher/internal/service/mocks"
)

const testChannelID = int64(-1002433007679)

type EngineTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	catalog     *mocks.MockCatalogClient
	gifts       *mocks.MockGiftStore
	subscribers *mocks.MockSubscriberStore
	txManager   *mocks.MockTransactionManager
	events      *mocks.MockEventPublisher
	sender      *mocks.MockMessageSender

	engine *Engine
}

func (s *EngineTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.catalog = mocks.NewMockCatalogClient(s.ctrl)
	s.gifts = mocks.NewMockGiftStore(s.ctrl)
	s.subscribers = mocks.NewMockSubscriberStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.events = mocks.NewMockEventPublisher(s.ctrl)
	s.sender = mocks.NewMockMessageSender(s.ctrl)

	logger := testLogger()
	broadcaster := NewBroadcaster(s.sender, testChannelID, logger)
	executor := NewExecutor(s.catalog, s.subscribers, 0, logger)

	s.engine = NewEngine(
		s.catalog,
		s.gifts,
		s.subscribers,
		s.txManager,
		s.events,
		broadcaster,
		executor,
		logger,
	)
}

func (s *EngineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) expectRecordInTx(ctx context.Context, batch []domain.Gift) {
	s.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
	s.gifts.EXPECT().RecordNew(ctx, batch).Return(nil)
}

func (s *EngineTestSuite) TestRunCycle_DiscoversNotifiesAndBuys() {
	ctx := context.Background()

	catalog := []domain.Gift{
		{ID: 1, Price: 30},
		{ID: 2, Price: 45},
		{ID: 3, Price: 0}, // free, excluded everywhere
	}
	batch := []domain.Gift{{ID: 1, Price: 30}, {ID: 2, Price: 45}}

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return(catalog, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(map[int64]struct{}{}, nil)
	s.expectRecordInTx(ctx, batch)
	s.subscribers.EXPECT().List(ctx).Return([]domain.Subscriber{
		{UserID: 42, StarBalance: 100},
		{UserID: 43, StarBalance: 0},
	}, nil)
	s.events.EXPECT().PublishDiscovery(ctx, batch).Return(nil)

	s.sender.EXPECT().SendMessage(ctx, int64(42), gomock.Any()).Return(nil)
	s.sender.EXPECT().SendMessage(ctx, int64(43), gomock.Any()).Return(nil)
	s.sender.EXPECT().SendMessage(ctx, testChannelID, gomock.Any()).Return(nil)

	// Only the positive balance buys: 2 * 45, remainder 10 buys nothing.
	s.catalog.EXPECT().SendGift(ctx, int64(42), int64(2)).Return(nil).Times(2)
	s.subscribers.EXPECT().SetBalance(gomock.Any(), int64(42), int64(10)).Return(nil)

	stats, err := s.engine.RunCycle(ctx)

	s.NoError(err)
	s.Equal(3, stats.Fetched)
	s.Equal(2, stats.New)
	s.Equal(3, stats.Notified)
	s.Equal(0, stats.NotifyErrors)
	s.Equal(int64(2), stats.Sent)
	s.Equal(int64(90), stats.StarsSpent)
}

func (s *EngineTestSuite) TestRunCycle_AllKnownIsQuiet() {
	ctx := context.Background()

	catalog := []domain.Gift{{ID: 1, Price: 30}, {ID: 2, Price: 45}}
	known := map[int64]struct{}{1: {}, 2: {}}

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return(catalog, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(known, nil)
	// No ledger write, no notification, no purchase pass.

	stats, err := s.engine.RunCycle(ctx)

	s.NoError(err)
	s.Equal(2, stats.Fetched)
	s.Equal(0, stats.New)
	s.Equal(0, stats.Notified)
	s.Equal(int64(0), stats.StarsSpent)
}

func (s *EngineTestSuite) TestRunCycle_ZeroPriceOnlyIsQuiet() {
	ctx := context.Background()

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return([]domain.Gift{{ID: 3, Price: 0}}, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(map[int64]struct{}{}, nil)

	stats, err := s.engine.RunCycle(ctx)

	s.NoError(err)
	s.Equal(1, stats.Fetched)
	s.Equal(0, stats.New)
}

func (s *EngineTestSuite) TestRunCycle_CatalogErrorPropagates() {
	ctx := context.Background()

	s.catalog.EXPECT().ListAvailableGifts(ctx).
		Return(nil, &domain.RemoteError{Code: 500, Message: "internal"})

	stats, err := s.engine.RunCycle(ctx)

	s.Error(err)
	s.Nil(stats)
	s.Contains(err.Error(), "list available gifts")
}

func (s *EngineTestSuite) TestRunCycle_RecordFailurePropagates() {
	ctx := context.Background()

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return([]domain.Gift{{ID: 1, Price: 30}}, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(map[int64]struct{}{}, nil)
	s.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).Return(errors.New("connection reset"))

	stats, err := s.engine.RunCycle(ctx)

	s.Error(err)
	s.Nil(stats)
	s.Contains(err.Error(), "record new gifts")
}

func (s *EngineTestSuite) TestRunCycle_NotifyFailureDoesNotBlockPurchases() {
	ctx := context.Background()
	batch := []domain.Gift{{ID: 7, Price: 50}}

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return(batch, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(map[int64]struct{}{}, nil)
	s.expectRecordInTx(ctx, batch)
	s.subscribers.EXPECT().List(ctx).Return([]domain.Subscriber{{UserID: 42, StarBalance: 50}}, nil)
	s.events.EXPECT().PublishDiscovery(ctx, batch).Return(nil)

	s.sender.EXPECT().SendMessage(ctx, int64(42), gomock.Any()).
		Return(&domain.RemoteError{Code: 400, Message: "chat not found"})
	s.sender.EXPECT().SendMessage(ctx, testChannelID, gomock.Any()).Return(nil)

	s.catalog.EXPECT().SendGift(ctx, int64(42), int64(7)).Return(nil)
	s.subscribers.EXPECT().SetBalance(gomock.Any(), int64(42), int64(0)).Return(nil)

	stats, err := s.engine.RunCycle(ctx)

	s.NoError(err)
	s.Equal(1, stats.Notified)
	s.Equal(1, stats.NotifyErrors)
	s.Equal(int64(50), stats.StarsSpent)
}

func (s *EngineTestSuite) TestRunCycle_DebitFailureDoesNotAbortSiblings() {
	ctx := context.Background()
	batch := []domain.Gift{{ID: 7, Price: 50}}

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return(batch, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(map[int64]struct{}{}, nil)
	s.expectRecordInTx(ctx, batch)
	s.subscribers.EXPECT().List(ctx).Return([]domain.Subscriber{
		{UserID: 42, StarBalance: 50},
		{UserID: 43, StarBalance: 50},
	}, nil)
	s.events.EXPECT().PublishDiscovery(ctx, batch).Return(nil)

	s.sender.EXPECT().SendMessage(ctx, gomock.Any(), gomock.Any()).Return(nil).Times(3)

	s.catalog.EXPECT().SendGift(ctx, int64(42), int64(7)).Return(nil)
	s.subscribers.EXPECT().SetBalance(gomock.Any(), int64(42), int64(0)).
		Return(errors.New("connection reset"))

	s.catalog.EXPECT().SendGift(ctx, int64(43), int64(7)).Return(nil)
	s.subscribers.EXPECT().SetBalance(gomock.Any(), int64(43), int64(0)).Return(nil)

	stats, err := s.engine.RunCycle(ctx)

	s.NoError(err)
	s.Equal(int64(100), stats.StarsSpent)
}

func (s *EngineTestSuite) TestRunCycle_NilPublisher() {
	ctx := context.Background()
	batch := []domain.Gift{{ID: 7, Price: 50}}

	logger := testLogger()
	engine := NewEngine(
		s.catalog,
		s.gifts,
		s.subscribers,
		s.txManager,
		nil,
		NewBroadcaster(s.sender, testChannelID, logger),
		NewExecutor(s.catalog, s.subscribers, 0, logger),
		logger,
	)

	s.catalog.EXPECT().ListAvailableGifts(ctx).Return(batch, nil)
	s.gifts.EXPECT().ListKnownIDs(ctx).Return(map[int64]struct{}{}, nil)
	s.expectRecordInTx(ctx, batch)
	s.subscribers.EXPECT().List(ctx).Return(nil, nil)
	s.sender.EXPECT().SendMessage(ctx, testChannelID, gomock.Any()).Return(nil)

	stats, err := engine.RunCycle(ctx)

	s.NoError(err)
	s.Equal(1, stats.New)
}
