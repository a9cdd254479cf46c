package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tournament-tracker/internal/config"
	"tournament-tracker/internal/domain"
	"tournament-tracker/internal/metrics"
	"tournament-tracker/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const DefaultBaseURL = "https://api.pubg.com"

// Player is the resolved upstream account together with its recent match
// refs, most-recent-first as reported upstream.
type Player struct {
	AccountID string
	Name      string
	MatchIDs  []string
}

// Client talks to the PUBG API. The API key is passed per call, never stored:
// different tournaments supply distinct keys.
type Client struct {
	baseURL     string
	shard       string
	client      *fasthttp.Client
	governor    *ratelimit.Governor
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// epoch seconds of the next window
	Reset int64 `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(cfg *config.Config, governor *ratelimit.Governor, m *metrics.Metrics, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		shard:   cfg.Shard,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		governor: governor,
		metrics:  m,
		logger:   logger,
		rateLimit: RateLimitInfo{
			Limit:     10,
			Remaining: 10,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *Client) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-RateLimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-RateLimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-RateLimit-Reset")); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// ResolvePlayer looks up an account by in-game name, case-insensitively.
// The same upstream object carries the account's recent match refs, so one
// call serves both resolution and enumeration.
func (c *Client) ResolvePlayer(ctx context.Context, apiKey, name string) (*Player, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: player name is required", domain.ErrBadRequest)
	}

	endpoint := fmt.Sprintf("%s/shards/%s/players?filter[playerNames]=%s", c.baseURL, c.shard, url.QueryEscape(trimmed))
	resp, err := doRequest[playersResponse](ctx, c, "players", endpoint, apiKey)
	if err != nil {
		return nil, err
	}

	for _, data := range resp.Data {
		if strings.EqualFold(data.Attributes.Name, trimmed) {
			return toPlayer(data), nil
		}
	}
	return nil, fmt.Errorf("%w: player %q", domain.ErrNotFound, trimmed)
}

// PlayerByID fetches a single account object by its stable identifier.
func (c *Client) PlayerByID(ctx context.Context, apiKey, accountID string) (*Player, error) {
	endpoint := fmt.Sprintf("%s/shards/%s/players/%s", c.baseURL, c.shard, url.PathEscape(accountID))
	resp, err := doRequest[playerResponse](ctx, c, "player", endpoint, apiKey)
	if err != nil {
		return nil, err
	}
	return toPlayer(resp.Data), nil
}

// TournamentMatchIDs lists the match refs attached to an upstream
// tournament, most-recent-first as reported.
func (c *Client) TournamentMatchIDs(ctx context.Context, apiKey, tournamentID string) ([]string, error) {
	if strings.TrimSpace(tournamentID) == "" {
		return nil, fmt.Errorf("%w: tournament id is required", domain.ErrBadRequest)
	}

	endpoint := fmt.Sprintf("%s/tournaments/%s", c.baseURL, url.PathEscape(tournamentID))
	resp, err := doRequest[tournamentResponse](ctx, c, "tournament", endpoint, apiKey)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, ref := range resp.Included {
		if ref.Type == "match" {
			ids = append(ids, ref.ID)
		}
	}
	return ids, nil
}

// Match fetches one match's detail and maps it to the engine's summary form.
func (c *Client) Match(ctx context.Context, apiKey, matchID string) (*domain.MatchSummary, error) {
	endpoint := fmt.Sprintf("%s/shards/%s/matches/%s", c.baseURL, c.shard, url.PathEscape(matchID))
	resp, err := doRequest[matchResponse](ctx, c, "match", endpoint, apiKey)
	if err != nil {
		return nil, err
	}
	return mapMatch(resp)
}

func toPlayer(data playerData) *Player {
	ids := make([]string, 0, len(data.Relationships.Matches.Data))
	for _, ref := range data.Relationships.Matches.Data {
		if ref.Type == "match" {
			ids = append(ids, ref.ID)
		}
	}
	return &Player{
		AccountID: data.ID,
		Name:      data.Attributes.Name,
		MatchIDs:  ids,
	}
}

// mapMatch flattens the JSON:API payload into a MatchSummary. Roster ranks
// become team placements; equal ranks in source data are broken by team key
// so placements form a strict 1..T ordering.
func mapMatch(resp *matchResponse) (*domain.MatchSummary, error) {
	participants := make(map[string]participantItem)
	var rosters []rosterItem

	for _, raw := range resp.Included {
		var header includedHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, fmt.Errorf("decoding match payload: %w", err)
		}
		switch header.Type {
		case "participant":
			var item participantItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, fmt.Errorf("decoding participant: %w", err)
			}
			participants[item.ID] = item
		case "roster":
			var item rosterItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, fmt.Errorf("decoding roster: %w", err)
			}
			rosters = append(rosters, item)
		}
	}

	solo := strings.HasPrefix(resp.Data.Attributes.GameMode, "solo")

	sort.Slice(rosters, func(i, j int) bool {
		if rosters[i].Attributes.Stats.Rank != rosters[j].Attributes.Stats.Rank {
			return rosters[i].Attributes.Stats.Rank < rosters[j].Attributes.Stats.Rank
		}
		return teamKey(rosters[i]) < teamKey(rosters[j])
	})

	summary := &domain.MatchSummary{
		MatchID:       resp.Data.ID,
		CreatedAt:     resp.Data.Attributes.CreatedAt,
		MapName:       resp.Data.Attributes.MapName,
		GameMode:      resp.Data.Attributes.GameMode,
		IsCustomMatch: resp.Data.Attributes.IsCustomMatch,
	}

	seen := make(map[string]bool)
	for i, roster := range rosters {
		placement := i + 1
		team := ""
		if !solo {
			team = teamKey(roster)
		}
		for _, ref := range roster.Relationships.Participants.Data {
			item, ok := participants[ref.ID]
			if !ok {
				continue
			}
			seen[ref.ID] = true
			summary.Participants = append(summary.Participants, domain.ParticipantStat{
				AccountID: item.Attributes.Stats.PlayerID,
				Name:      item.Attributes.Stats.Name,
				TeamID:    team,
				Kills:     item.Attributes.Stats.Kills,
				Placement: placement,
			})
		}
	}

	// participants outside any roster keep their own winPlace
	var orphans []participantItem
	for id, item := range participants {
		if !seen[id] {
			orphans = append(orphans, item)
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].Attributes.Stats.PlayerID < orphans[j].Attributes.Stats.PlayerID
	})
	for _, item := range orphans {
		summary.Participants = append(summary.Participants, domain.ParticipantStat{
			AccountID: item.Attributes.Stats.PlayerID,
			Name:      item.Attributes.Stats.Name,
			Kills:     item.Attributes.Stats.Kills,
			Placement: item.Attributes.Stats.WinPlace,
		})
	}

	sort.SliceStable(summary.Participants, func(i, j int) bool {
		if summary.Participants[i].Placement != summary.Participants[j].Placement {
			return summary.Participants[i].Placement < summary.Participants[j].Placement
		}
		return summary.Participants[i].AccountID < summary.Participants[j].AccountID
	})

	return summary, nil
}

func teamKey(roster rosterItem) string {
	if roster.Attributes.Stats.TeamID > 0 {
		return strconv.Itoa(roster.Attributes.Stats.TeamID)
	}
	return roster.ID
}

func doRequest[T any](ctx context.Context, c *Client, name, endpoint, apiKey string) (*T, error) {
	var result *T
	err := c.governor.Do(ctx, func(ctx context.Context) error {
		body, err := c.roundTrip(ctx, name, endpoint, apiKey)
		if err != nil {
			return err
		}
		var decoded T
		if err := json.Unmarshal(body, &decoded); err != nil {
			return fmt.Errorf("decoding %s response: %w", name, err)
		}
		result = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) roundTrip(ctx context.Context, name, endpoint, apiKey string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/vnd.api+json")

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	c.metrics.UpstreamDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(name, "transport_error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	c.updateRateLimit(resp)

	status := resp.StatusCode()
	if outcome, err := classifyStatus(name, status); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(name, outcome).Inc()
		return nil, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(name, "ok").Inc()

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func classifyStatus(name string, status int) (string, error) {
	switch {
	case status == fasthttp.StatusOK:
		return "ok", nil
	case status == fasthttp.StatusNotFound:
		return "not_found", fmt.Errorf("%w: %s returned 404", domain.ErrNotFound, name)
	case status == fasthttp.StatusTooManyRequests:
		return "throttled", fmt.Errorf("%w: %s returned 429", domain.ErrThrottled, name)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return "unauthorized", fmt.Errorf("%w: %s rejected the API key (%d)", domain.ErrBadRequest, name, status)
	case status >= 400 && status < 500:
		return "client_error", fmt.Errorf("%w: %s returned %d", domain.ErrBadRequest, name, status)
	default:
		return "server_error", fmt.Errorf("%w: %s returned %d", domain.ErrUpstreamUnavailable, name, status)
	}
}
