package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/infinitybotlist/lanyard/dovewing"
	"github.com/infinitybotlist/lanyard/lanyard"
	"github.com/infinitybotlist/lanyard/snowflake"
	jsoniter "github.com/json-iterator/go"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A lookup prints something about one user to w
type lookup func(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error

var lookups = map[string]struct {
	help string
	fn   lookup
}{
	"user":       {"Print the full presence of a user as JSON", printUser},
	"status":     {"Print the status and active clients of a user", printStatus},
	"spotify":    {"Print what a user is listening to on Spotify", printSpotify},
	"activities": {"List the activities of a user", printActivities},
	"kv":         {"Print the KV store of a user with sorted keys", printKV},
	"created":    {"Print when an account was created, works offline", printCreated},
	"platform":   {"Print the platform user summary of a user", printPlatform},
}

func fetch(ctx context.Context, f dovewing.Fetcher, id string) (*lanyard.Presence, error) {
	p, err := f.FetchUser(ctx, lanyard.Snowflake(id))

	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, fmt.Errorf("lanyard returned no presence for %s", id)
	}

	return p, nil
}

func printUser(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error {
	p, err := fetch(ctx, f, id)

	if err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(p, "", "  ")

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(bytes))
	return err
}

func printStatus(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error {
	p, err := fetch(ctx, f, id)

	if err != nil {
		return err
	}

	platforms := p.Platforms()

	if len(platforms) == 0 {
		_, err = fmt.Fprintln(w, p.DiscordStatus)
		return err
	}

	_, err = fmt.Fprintf(w, "%s (%s)\n", p.DiscordStatus, strings.Join(platforms, ", "))
	return err
}

func printSpotify(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error {
	p, err := fetch(ctx, f, id)

	if err != nil {
		return err
	}

	if !p.ListeningToSpotify || p.Spotify == nil {
		_, err = fmt.Fprintln(w, "Not listening to Spotify")
		return err
	}

	s := p.Spotify

	fmt.Fprintf(w, "%s by %s on %s\n", s.Song, strings.ReplaceAll(s.Artist, ";", ","), s.Album)

	if s.Timestamps.Start > 0 && s.Timestamps.End > s.Timestamps.Start {
		length := s.Timestamps.EndTime().Sub(s.Timestamps.StartTime())
		fmt.Fprintf(w, "Length: %s\n", length.Round(time.Second))
	}

	if s.TrackID != nil {
		fmt.Fprintf(w, "https://open.spotify.com/track/%s\n", *s.TrackID)
	}

	return nil
}

func printActivities(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error {
	p, err := fetch(ctx, f, id)

	if err != nil {
		return err
	}

	if len(p.Activities) == 0 {
		_, err = fmt.Fprintln(w, "No activities")
		return err
	}

	for _, a := range p.Activities {
		line := dovewing.ActivitySummary(a)

		if a.Details != nil && *a.Details != "" {
			line += ": " + *a.Details
		}

		if a.Party != nil {
			if current, ok := a.Party.Current(); ok {
				maxSize, _ := a.Party.Max()
				line += fmt.Sprintf(" (%d of %d)", current, maxSize)
			}
		}

		fmt.Fprintln(w, line)
	}

	return nil
}

func printKV(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error {
	p, err := fetch(ctx, f, id)

	if err != nil {
		return err
	}

	keys := make([]string, 0, len(p.KV))

	for k := range p.KV {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	om := orderedmap.New[string, string]()

	for _, k := range keys {
		om.Set(k, p.KV[k])
	}

	bytes, err := json.Marshal(om)

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(bytes))
	return err
}

func printCreated(_ context.Context, _ dovewing.Fetcher, id string, w io.Writer) error {
	t, err := snowflake.CreatedAt(id)

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, t.UTC().Format(time.RFC3339))
	return err
}

func printPlatform(ctx context.Context, f dovewing.Fetcher, id string, w io.Writer) error {
	u, err := dovewing.GetUser(ctx, f, id)

	if err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(u, "", "  ")

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(bytes))
	return err
}
