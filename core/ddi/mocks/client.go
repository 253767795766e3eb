package mocks

import (
	"context"

	"ddi-sync/core/ddi"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of ddi.Client
type Client struct {
	mock.Mock
}

func (m *Client) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) GetNetworkViews(ctx context.Context) ([]ddi.NetworkView, error) {
	args := m.Called(ctx)
	if views, ok := args.Get(0).([]ddi.NetworkView); ok {
		return views, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetNetworks(ctx context.Context, view string) ([]ddi.Network, error) {
	args := m.Called(ctx, view)
	if networks, ok := args.Get(0).([]ddi.Network); ok {
		return networks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListNetworksBatched(ctx context.Context, view string) ([]ddi.Network, error) {
	args := m.Called(ctx, view)
	if networks, ok := args.Get(0).([]ddi.Network); ok {
		return networks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetNetworkBySubnet(ctx context.Context, subnet, view string) (*ddi.Network, error) {
	args := m.Called(ctx, subnet, view)
	if network, ok := args.Get(0).(*ddi.Network); ok {
		return network, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateNetwork(ctx context.Context, subnet, view, comment string, extattrs map[string]ddi.AttrValue) (string, error) {
	args := m.Called(ctx, subnet, view, comment, extattrs)
	return args.String(0), args.Error(1)
}

func (m *Client) UpdateNetwork(ctx context.Context, ref, comment string, extattrs map[string]ddi.AttrValue) error {
	args := m.Called(ctx, ref, comment, extattrs)
	return args.Error(0)
}

func (m *Client) CreateNetworksBatch(ctx context.Context, candidates []ddi.NetworkCandidate, view string) (*ddi.BatchResult, error) {
	args := m.Called(ctx, candidates, view)
	if result, ok := args.Get(0).(*ddi.BatchResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetExtensibleAttributes(ctx context.Context) ([]ddi.AttributeDef, error) {
	args := m.Called(ctx)
	if defs, ok := args.Get(0).([]ddi.AttributeDef); ok {
		return defs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateExtensibleAttribute(ctx context.Context, name, attrType, comment string) (string, error) {
	args := m.Called(ctx, name, attrType, comment)
	return args.String(0), args.Error(1)
}

func (m *Client) SearchNetworksByAttribute(ctx context.Context, name, value, view string) ([]ddi.Network, error) {
	args := m.Called(ctx, name, value, view)
	if networks, ok := args.Get(0).([]ddi.Network); ok {
		return networks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Close() {
	m.Called()
}
