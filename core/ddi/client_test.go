package ddi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client against a test server with fast retries.
func newTestClient(t *testing.T, serverURL string) Client {
	t.Helper()

	client, err := NewClient(Config{
		Host:             serverURL,
		Username:         "admin",
		Password:         "infoblox",
		RetryDelayMillis: 1,
		BatchPauseMillis: 1,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestNewClient_NotConfigured(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(Config{Host: "https://grid.example.com"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wapi/v2.13.1/grid", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "infoblox", pass)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"_ref":"grid/b25l"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.NoError(t, client.TestConnection(context.Background()))
}

func TestRetryExhaustion(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.TestConnection(context.Background())
	require.Error(t, err)

	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, http.StatusBadGateway, transient.StatusCode)
	assert.Equal(t, 3, transient.Attempts)
	assert.Contains(t, transient.Body, "upstream down")

	// Exactly 3 attempts, never more
	assert.Equal(t, int32(3), requests.Load())
}

func TestAuthenticationFailureNotRetried(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.TestConnection(context.Background())
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int32(1), requests.Load())
}

func TestGetNetworkViews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wapi/v2.13.1/networkview", r.URL.Path)
		assert.Equal(t, "name,comment", r.URL.Query().Get("_return_fields"))
		_, _ = w.Write([]byte(`[{"name":"default"},{"name":"lab","comment":"lab view"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	views, err := client.GetNetworkViews(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "default", views[0].Name)
	assert.Equal(t, "lab view", views[1].Comment)
}

func TestListNetworksBatched_DrainsAllPages(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		pageID := r.URL.Query().Get("_page_id")

		switch n {
		case 1:
			assert.Empty(t, pageID)
			_, _ = w.Write([]byte(`{"result":[{"network":"10.0.0.0/24"}],"next_page_id":"p2"}`))
		case 2:
			assert.Equal(t, "p2", pageID)
			_, _ = w.Write([]byte(`{"result":[{"network":"10.0.1.0/24"}],"next_page_id":"p3"}`))
		case 3:
			assert.Equal(t, "p3", pageID)
			_, _ = w.Write([]byte(`{"result":[{"network":"10.0.2.0/24"}]}`))
		default:
			t.Errorf("unexpected extra request %d", n)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	networks, err := client.ListNetworksBatched(context.Background(), "default")
	require.NoError(t, err)

	// Token returned twice -> drained in exactly 3 requests, in page order
	assert.Equal(t, int32(3), requests.Load())
	require.Len(t, networks, 3)
	assert.Equal(t, "10.0.0.0/24", networks[0].Network)
	assert.Equal(t, "10.0.1.0/24", networks[1].Network)
	assert.Equal(t, "10.0.2.0/24", networks[2].Network)
}

func TestListNetworksBatched_PlainArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"network":"192.168.0.0/24","extattrs":{"environment":{"value":"prod"}}}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	networks, err := client.ListNetworksBatched(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, networks, 1)
	assert.Equal(t, "prod", networks[0].ExtAttrs["environment"].Value)
}

func TestGetNetworkBySubnet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("network") == "10.0.0.0/24" {
			_, _ = w.Write([]byte(`[{"_ref":"network/ZG5z:10.0.0.0%2F24/default","network":"10.0.0.0/24"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	found, err := client.GetNetworkBySubnet(context.Background(), "10.0.0.0/24", "default")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "network/ZG5z:10.0.0.0%2F24/default", found.Ref)

	missing, err := client.GetNetworkBySubnet(context.Background(), "10.99.0.0/24", "default")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateNetwork_RefFromLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var payload Network
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "10.0.0.0/24", payload.Network)
		assert.Equal(t, "default", payload.NetworkView)
		assert.Equal(t, "prod", payload.ExtAttrs["environment"].Value)

		w.Header().Set("Location", "network/ZG5z:10.0.0.0%2F24/default")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	ref, err := client.CreateNetwork(context.Background(), "10.0.0.0/24", "default", "AWS Account: 123, Region: us-east-1",
		map[string]AttrValue{"environment": {Value: "prod"}})
	require.NoError(t, err)
	assert.Equal(t, "network/ZG5z:10.0.0.0%2F24/default", ref)
}

func TestCreateNetwork_RefFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"network/YWJj:10.1.0.0%2F16/default"`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	ref, err := client.CreateNetwork(context.Background(), "10.1.0.0/16", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "network/YWJj:10.1.0.0%2F16/default", ref)
}

func TestUpdateNetwork_UsesRefTail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wapi/v2.13.1/network/ZG5z:10.0.0.0", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "extattrs")
		assert.NotContains(t, payload, "comment")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"network/ZG5z:10.0.0.0"`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.UpdateNetwork(context.Background(), "network/ZG5z:10.0.0.0", "",
		map[string]AttrValue{"owner": {Value: "neteng"}})
	assert.NoError(t, err)
}

func TestCreateNetworksBatch_AggregateInvariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload Network
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		if payload.Network == "10.9.9.0/24" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"text":"network exists"}`))
			return
		}
		w.Header().Set("Location", "network/"+payload.Network)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Host:             server.URL,
		Username:         "admin",
		Password:         "infoblox",
		RetryDelayMillis: 1,
		BatchSize:        2,
		BatchPauseMillis: 1,
	})
	require.NoError(t, err)
	defer client.Close()

	candidates := []NetworkCandidate{
		{Subnet: "10.0.0.0/24"},
		{Subnet: "10.0.1.0/24"},
		{Subnet: "10.9.9.0/24"},
		{Subnet: "10.0.2.0/24"},
		{Subnet: "10.0.3.0/24"},
	}

	result, err := client.CreateNetworksBatch(context.Background(), candidates, "default")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, len(candidates), result.Created+result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "10.9.9.0/24")
}

func TestCreateNetworksBatch_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no requests expected for an empty candidate list")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.CreateNetworksBatch(context.Background(), nil, "default")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Failed)
}

func TestGetExtensibleAttributes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wapi/v2.13.1/extensibleattributedef", r.URL.Path)
		_, _ = w.Write([]byte(`[{"name":"environment","type":"STRING"},{"name":"owner","type":"STRING"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	defs, err := client.GetExtensibleAttributes(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "environment", defs[0].Name)
	assert.Equal(t, AttrTypeString, defs[0].Type)
}

func TestSearchNetworksByAttribute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "prod", r.URL.Query().Get("*environment"))
		_, _ = w.Write([]byte(`[{"network":"10.0.0.0/24"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	networks, err := client.SearchNetworksByAttribute(context.Background(), "environment", "prod", "default")
	require.NoError(t, err)
	require.Len(t, networks, 1)
}

func TestCallCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.TestConnection(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
