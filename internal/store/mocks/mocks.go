// Package mocks provides testify mocks for the storage port.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Store is a mock for types.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	args := m.Called(ctx, slot)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Save(ctx context.Context, slot string, data []byte) error {
	args := m.Called(ctx, slot, data)
	return args.Error(0)
}
