package storage

import (
	"context"
	"errors"
)

// State is a source of raw dataset bytes (one JSON document per dataset).
type State interface {
	Load(ctx context.Context) ([]byte, error)
}

// TestState is a simple in-memory implementation for testing
type TestState struct {
	data []byte
	err  error
}

func NewTestState(data []byte) *TestState {
	return &TestState{data: data}
}

func NewTestStateWithError() *TestState {
	return &TestState{err: errors.New("not found")}
}

// Set replaces the bytes returned by subsequent loads.
func (t *TestState) Set(data []byte) {
	t.data = data
	t.err = nil
}

func (t *TestState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}
