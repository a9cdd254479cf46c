package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tournament-tracker/internal/domain"
	"tournament-tracker/internal/metrics"
	"tournament-tracker/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestClient(baseURL string) *Client {
	governor := ratelimit.NewWithPolicy(4, ratelimit.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, metrics.NewNop(), zerolog.Nop())
	return &Client{
		baseURL:  baseURL,
		shard:    "steam",
		client:   &fasthttp.Client{},
		governor: governor,
		metrics:  metrics.NewNop(),
		logger:   zerolog.Nop(),
	}
}

const playersFixture = `{
  "data": [
    {
      "type": "player",
      "id": "account.abc123",
      "attributes": {"name": "Shroud", "shardId": "steam"},
      "relationships": {
        "matches": {"data": [
          {"type": "match", "id": "m-new"},
          {"type": "match", "id": "m-old"}
        ]}
      }
    }
  ]
}`

func TestResolvePlayer(t *testing.T) {
	var gotAuth, gotAccept, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.Query().Get("filter[playerNames]")
		w.Header().Set("Content-Type", "application/vnd.api+json")
		fmt.Fprint(w, playersFixture)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	player, err := c.ResolvePlayer(context.Background(), "secret-key", "shroud")
	require.NoError(t, err)

	assert.Equal(t, "account.abc123", player.AccountID)
	assert.Equal(t, "Shroud", player.Name, "name matching is case-insensitive")
	assert.Equal(t, []string{"m-new", "m-old"}, player.MatchIDs)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "application/vnd.api+json", gotAccept)
	assert.Equal(t, "shroud", gotQuery)
}

func TestResolvePlayer_NameAbsentFromResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, playersFixture)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ResolvePlayer(context.Background(), "key", "someoneelse")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolvePlayer_EmptyName(t *testing.T) {
	c := newTestClient("http://unused")
	_, err := c.ResolvePlayer(context.Background(), "key", "   ")
	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestTournamentMatchIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tournaments/as-super2026", r.URL.Path)
		fmt.Fprint(w, `{
		  "data": {"type": "tournament", "id": "as-super2026", "attributes": {"createdAt": "2026-02-01T00:00:00Z"}},
		  "included": [
		    {"type": "match", "id": "m1"},
		    {"type": "match", "id": "m2"},
		    {"type": "other", "id": "x"}
		  ]
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ids, err := c.TournamentMatchIDs(context.Background(), "key", "as-super2026")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids, "non-match refs are ignored")
}

func matchFixture(gameMode string) string {
	return fmt.Sprintf(`{
	  "data": {
	    "type": "match",
	    "id": "m1",
	    "attributes": {
	      "createdAt": "2026-03-01T18:00:00Z",
	      "mapName": "Erangel_Main",
	      "gameMode": %q,
	      "isCustomMatch": true
	    }
	  },
	  "included": [
	    {"type": "roster", "id": "r2", "attributes": {"stats": {"rank": 2, "teamId": 7}},
	     "relationships": {"participants": {"data": [{"type": "participant", "id": "p3"}]}}},
	    {"type": "roster", "id": "r1", "attributes": {"stats": {"rank": 1, "teamId": 3}},
	     "relationships": {"participants": {"data": [
	       {"type": "participant", "id": "p1"}, {"type": "participant", "id": "p2"}
	     ]}}},
	    {"type": "participant", "id": "p1",
	     "attributes": {"stats": {"kills": 4, "winPlace": 1, "playerId": "account.a", "name": "alice"}}},
	    {"type": "participant", "id": "p2",
	     "attributes": {"stats": {"kills": 2, "winPlace": 1, "playerId": "account.b", "name": "bob"}}},
	    {"type": "participant", "id": "p3",
	     "attributes": {"stats": {"kills": 1, "winPlace": 2, "playerId": "account.c", "name": "carol"}}},
	    {"type": "asset", "id": "telemetry-1"}
	  ]
	}`, gameMode)
}

func TestMatch_MapsRostersToPlacements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shards/steam/matches/m1", r.URL.Path)
		fmt.Fprint(w, matchFixture("squad-fpp"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	summary, err := c.Match(context.Background(), "key", "m1")
	require.NoError(t, err)

	assert.Equal(t, "m1", summary.MatchID)
	assert.Equal(t, "Erangel_Main", summary.MapName)
	assert.True(t, summary.IsCustomMatch)
	assert.Equal(t, time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), summary.CreatedAt)

	require.Len(t, summary.Participants, 3)
	assert.Equal(t, "account.a", summary.Participants[0].AccountID)
	assert.Equal(t, 1, summary.Participants[0].Placement)
	assert.Equal(t, "3", summary.Participants[0].TeamID)
	assert.Equal(t, "account.b", summary.Participants[1].AccountID)
	assert.Equal(t, 1, summary.Participants[1].Placement)
	assert.Equal(t, "account.c", summary.Participants[2].AccountID)
	assert.Equal(t, 2, summary.Participants[2].Placement)
	assert.Equal(t, "7", summary.Participants[2].TeamID)
	assert.Equal(t, 4, summary.Participants[0].Kills)
}

func TestMatch_SoloModeHasNoTeams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, matchFixture("solo-fpp"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	summary, err := c.Match(context.Background(), "key", "m1")
	require.NoError(t, err)

	for _, p := range summary.Participants {
		assert.Empty(t, p.TeamID)
	}
}

func TestMapMatch_EqualRanksBreakByTeamKey(t *testing.T) {
	var resp matchResponse
	payload := `{
	  "data": {"type": "match", "id": "m1",
	    "attributes": {"createdAt": "2026-03-01T18:00:00Z", "gameMode": "squad", "isCustomMatch": true}},
	  "included": [
	    {"type": "roster", "id": "rb", "attributes": {"stats": {"rank": 1, "teamId": 9}},
	     "relationships": {"participants": {"data": [{"type": "participant", "id": "p2"}]}}},
	    {"type": "roster", "id": "ra", "attributes": {"stats": {"rank": 1, "teamId": 4}},
	     "relationships": {"participants": {"data": [{"type": "participant", "id": "p1"}]}}},
	    {"type": "participant", "id": "p1",
	     "attributes": {"stats": {"kills": 1, "winPlace": 1, "playerId": "account.a", "name": "a"}}},
	    {"type": "participant", "id": "p2",
	     "attributes": {"stats": {"kills": 1, "winPlace": 1, "playerId": "account.b", "name": "b"}}}
	  ]
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	summary, err := mapMatch(&resp)
	require.NoError(t, err)
	require.Len(t, summary.Participants, 2)
	assert.Equal(t, "4", summary.Participants[0].TeamID, "tied ranks order by team key")
	assert.Equal(t, 1, summary.Participants[0].Placement)
	assert.Equal(t, "9", summary.Participants[1].TeamID)
	assert.Equal(t, 2, summary.Participants[1].Placement, "placements stay a strict ordering")
}

func TestMapMatch_OrphanParticipantsKeepWinPlace(t *testing.T) {
	var resp matchResponse
	payload := `{
	  "data": {"type": "match", "id": "m1",
	    "attributes": {"createdAt": "2026-03-01T18:00:00Z", "gameMode": "squad", "isCustomMatch": true}},
	  "included": [
	    {"type": "participant", "id": "p1",
	     "attributes": {"stats": {"kills": 5, "winPlace": 3, "playerId": "account.a", "name": "a"}}}
	  ]
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	summary, err := mapMatch(&resp)
	require.NoError(t, err)
	require.Len(t, summary.Participants, 1)
	assert.Equal(t, 3, summary.Participants[0].Placement)
	assert.Empty(t, summary.Participants[0].TeamID)
}

func TestMatch_RetriesThrottledResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, matchFixture("squad-fpp"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	summary, err := c.Match(context.Background(), "key", "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", summary.MatchID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMatch_NotFoundDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Match(context.Background(), "key", "m-gone")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRateLimitInfo_TracksHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "10")
		w.Header().Set("X-RateLimit-Remaining", "4")
		w.Header().Set("X-RateLimit-Reset", "1760000000")
		fmt.Fprint(w, playersFixture)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ResolvePlayer(context.Background(), "key", "Shroud")
	require.NoError(t, err)

	info := c.GetRateLimitInfo()
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 4, info.Remaining)
	assert.Equal(t, int64(1760000000), info.Reset)
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status  int
		wantErr error
	}{
		{http.StatusOK, nil},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrThrottled},
		{http.StatusUnauthorized, domain.ErrBadRequest},
		{http.StatusForbidden, domain.ErrBadRequest},
		{http.StatusUnprocessableEntity, domain.ErrBadRequest},
		{http.StatusInternalServerError, domain.ErrUpstreamUnavailable},
		{http.StatusBadGateway, domain.ErrUpstreamUnavailable},
	}
	for _, tc := range cases {
		_, err := classifyStatus("players", tc.status)
		if tc.wantErr == nil {
			assert.NoError(t, err, "status %d", tc.status)
			continue
		}
		assert.ErrorIs(t, err, tc.wantErr, "status %d", tc.status)
	}
}
