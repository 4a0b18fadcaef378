package orchestrator

import (
	"context"

	"paygate/internal/domain/transactions"
	"paygate/internal/payments"

	"github.com/stretchr/testify/mock"
)

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) CreatePayment(ctx context.Context, req payments.PaymentRequest) (payments.GatewayOrder, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payments.GatewayOrder), args.Error(1)
}

func (m *GatewayMock) VerifyPayment(ctx context.Context, req payments.VerifyRequest) (payments.VerificationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payments.VerificationResult), args.Error(1)
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Record(ctx context.Context, t *transactions.Transaction) (string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) UpdateStatus(ctx context.Context, id string, status transactions.Status) (*transactions.Transaction, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(*transactions.Transaction), args.Error(1)
}

func (m *StoreMock) GetByID(ctx context.Context, id string) (*transactions.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*transactions.Transaction), args.Error(1)
}

func (m *StoreMock) List(ctx context.Context) ([]*transactions.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*transactions.Transaction), args.Error(1)
}
