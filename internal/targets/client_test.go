package targets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Token: "Bearer token"})
}

func TestMaps_ValueEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Integration/odata/ITargetsTargetsMaps", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"value": [
			{"Id": 1, "Name": "Карта А", "PeriodLabel": "2025"},
			{"Id": 0, "Name": "битая запись"},
			{"Id": 2, "Name": "Карта Б"}
		]}`)
	})

	maps, err := client.Maps(context.Background())
	require.NoError(t, err)

	// The record without a valid id is skipped, not fatal.
	require.Len(t, maps, 2)
	assert.Equal(t, "Карта А", maps[0].Name)
	assert.Equal(t, 2, maps[1].ID)
}

func TestMaps_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"Id": 5, "Name": "Карта"}]`)
	})

	maps, err := client.Maps(context.Background())
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, 5, maps[0].ID)
}

func TestMapGraph(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/integration/odata/Targets/GetGoalsMap", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"IsSuccess": true, "Payload": {
			"Nodes": [{"TargetId": 114, "Code": "Ц-1", "Name": "Цель", "ChildIds": [115, "116"]}],
			"Map": {"Id": 10, "Name": "Карта", "Progress": 40.5}
		}}`)
	})

	graph, err := client.MapGraph(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, 114, graph.Nodes[0].TargetID)
	// Child ids arrive as numbers or strings; both normalize.
	assert.Equal(t, "115", graph.Nodes[0].ChildIDs[0].String())
	assert.Equal(t, "116", graph.Nodes[0].ChildIDs[1].String())
	assert.Equal(t, "Карта", graph.Map.Name)
}

func TestTarget(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Integration/odata/ITargetsTargets(114)", r.URL.Path)
		fmt.Fprint(w, `{"Id": 114, "Name": "Цель", "AchievementPercentage": 42.5}`)
	})

	target, err := client.Target(context.Background(), 114)
	require.NoError(t, err)
	assert.Equal(t, 114, target.ID)
	assert.Equal(t, 42.5, target.Achievement)
}

func TestKeyResults_PayloadDataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/integration/odata/Targets/GetKeyResults(targetId=114)", r.URL.Path)
		fmt.Fprint(w, `{"Payload": {"Data": [
			{"Description": "КР-1", "AchievementPercentage": "60"},
			{"Description": ""},
			{"Description": "КР-2", "AchievementPercentage": "10"}
		]}}`)
	})

	krs, err := client.KeyResults(context.Background(), 114)
	require.NoError(t, err)
	require.Len(t, krs, 2)
	assert.Equal(t, "КР-1", krs[0].Description)
	assert.Equal(t, "60", krs[0].Achievement)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrUpstream},
		{http.StatusBadGateway, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.Maps(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Maps(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Token: "t", Timeout: 20 * time.Millisecond})
	_, err := client.Maps(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestTokenQuotesStripped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Token: `"Bearer token"`})
	_, err := client.Maps(context.Background())
	require.NoError(t, err)
}
