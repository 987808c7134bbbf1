// Dovewing resolves users into platform-neutral PlatformUsers, here using Lanyard presences
package dovewing

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/infinitybotlist/lanyard/dovewing/dovetypes"
	"github.com/infinitybotlist/lanyard/lanyard"
	"github.com/infinitybotlist/lanyard/snowflake"
)

// Fetcher fetches a presence. *lanyard.Client is a Fetcher
type Fetcher interface {
	FetchUser(ctx context.Context, id lanyard.Snowflake) (*lanyard.Presence, error)
}

// Fetches a user from lanyard and converts it to a PlatformUser
func GetUser(ctx context.Context, f Fetcher, id string) (*dovetypes.PlatformUser, error) {
	// Before wasting a request, ensure the ID is actually a valid snowflake
	id, err := snowflake.Validate(id)

	if err != nil {
		return nil, err
	}

	p, err := f.FetchUser(ctx, lanyard.Snowflake(id))

	if err != nil {
		return nil, fmt.Errorf("failed to get user from lanyard: %w", err)
	}

	if p == nil {
		return nil, fmt.Errorf("lanyard returned no presence for %s", id)
	}

	return FromPresence(p), nil
}

// Converts a presence to a PlatformUser
func FromPresence(p *lanyard.Presence) *dovetypes.PlatformUser {
	du := discordUser(p.DiscordUser)

	u := &dovetypes.PlatformUser{
		ID:          du.ID,
		Username:    du.Username,
		DisplayName: du.GlobalName,
		Avatar:      du.AvatarURL(""),
		Bot:         du.Bot,
		Status:      discordPlatformStatus(discordgo.Status(p.DiscordStatus)),
		Platforms:   p.Platforms(),
		Flags:       discordFlags(p.DiscordUser.PublicFlags),
		ExtraData: map[string]any{
			"public_flags": p.DiscordUser.PublicFlags,
		},
	}

	if u.DisplayName == "" {
		if du.Discriminator != "" && du.Discriminator != "0" {
			u.DisplayName = du.Username + "#" + du.Discriminator
		} else {
			u.DisplayName = du.Username
		}
	}

	if len(p.Activities) > 0 {
		u.Activity = ActivitySummary(p.Activities[0])
	}

	if p.Spotify != nil {
		u.ExtraData["spotify"] = p.Spotify.Song + " by " + p.Spotify.Artist
	}

	// Prefer primary_guild, clan is its deprecated twin
	tag := p.DiscordUser.PrimaryGuild

	if tag == nil {
		tag = p.DiscordUser.Clan
	}

	if tag != nil && tag.IdentityEnabled {
		u.ExtraData["guild_tag"] = tag.Tag
	}

	if c := p.DiscordUser.Collectibles; c != nil && c.Nameplate != nil {
		nameplate := map[string]any{
			"label": c.Nameplate.Label,
		}

		// Palettes Discord adds later are left out rather than guessed at
		if c.Nameplate.Palette.Known() {
			nameplate["palette"] = string(c.Nameplate.Palette)
		}

		u.ExtraData["nameplate"] = nameplate
	}

	if len(p.KV) > 0 {
		u.ExtraData["kv"] = p.KV
	}

	return u
}
