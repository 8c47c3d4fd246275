package mocks

import (
	"context"

	"github.com/user/blocksched/pkg/ports"
)

// DatasetSource is a mock implementation of ports.DatasetSource.
type DatasetSource struct {
	Data      []byte
	Err       error
	Path      string
	FetchFunc func(ctx context.Context) ([]byte, error)

	FetchCalls int
}

func (m *DatasetSource) Fetch(ctx context.Context) ([]byte, error) {
	m.FetchCalls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return m.Data, m.Err
}

func (m *DatasetSource) Name() string {
	if m.Path == "" {
		return "dataset.json"
	}
	return m.Path
}

var _ ports.DatasetSource = (*DatasetSource)(nil)
