package lanyard

import "time"

// A Snowflake is a Discord ID in its decimal string form
type Snowflake string

func (s Snowflake) String() string {
	return string(s)
}

type Status string

const (
	StatusOnline       Status = "online"
	StatusIdle         Status = "idle"
	StatusDoNotDisturb Status = "dnd"
	StatusOffline      Status = "offline"
)

// Presence is the data returned for a monitored user
type Presence struct {
	Spotify                 *Spotify          `json:"spotify" description:"The users current Spotify state, null if not listening"`
	KV                      map[string]string `json:"kv" description:"Free-form key/value store of the user"`
	ListeningToSpotify      bool              `json:"listening_to_spotify" description:"Whether the user is listening to Spotify"`
	DiscordUser             DiscordUser       `json:"discord_user" description:"The users Discord profile"`
	DiscordStatus           Status            `json:"discord_status" description:"The users Discord status"`
	Activities              []Activity        `json:"activities" description:"The users activities, in the order Discord reports them"`
	ActiveOnDiscordWeb      bool              `json:"active_on_discord_web" description:"Whether the user is active on the web client"`
	ActiveOnDiscordMobile   bool              `json:"active_on_discord_mobile" description:"Whether the user is active on mobile"`
	ActiveOnDiscordDesktop  bool              `json:"active_on_discord_desktop" description:"Whether the user is active on desktop"`
	ActiveOnDiscordEmbedded bool              `json:"active_on_discord_embedded" description:"Whether the user is active on an embedded client (such as a console)"`
}

// Platforms returns the names of the surfaces the user is currently active on
func (p *Presence) Platforms() []string {
	platforms := []string{}

	if p.ActiveOnDiscordDesktop {
		platforms = append(platforms, "desktop")
	}

	if p.ActiveOnDiscordMobile {
		platforms = append(platforms, "mobile")
	}

	if p.ActiveOnDiscordWeb {
		platforms = append(platforms, "web")
	}

	if p.ActiveOnDiscordEmbedded {
		platforms = append(platforms, "embedded")
	}

	return platforms
}

// SpotifyActivity returns the activity Discord reports for Spotify, if any
func (p *Presence) SpotifyActivity() *Activity {
	for i := range p.Activities {
		if p.Activities[i].ID == "spotify:1" {
			return &p.Activities[i]
		}
	}

	return nil
}

type Spotify struct {
	TrackID     *string    `json:"track_id" description:"The Spotify track ID, null for local files"`
	Timestamps  Timestamps `json:"timestamps"`
	Song        string     `json:"song"`
	Artist      string     `json:"artist" description:"Artists, separated by semicolons"`
	Album       string     `json:"album"`
	AlbumArtURL *string    `json:"album_art_url"`
}

// Timestamps are unix milliseconds
type Timestamps struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (t Timestamps) StartTime() time.Time {
	return time.UnixMilli(t.Start)
}

func (t Timestamps) EndTime() time.Time {
	return time.UnixMilli(t.End)
}

type DiscordUser struct {
	Username             string                `json:"username"`
	PublicFlags          int64                 `json:"public_flags"`
	ID                   Snowflake             `json:"id"`
	DisplayName          *string               `json:"display_name" description:"Deprecated, mirrors global_name"`
	GlobalName           *string               `json:"global_name"`
	Discriminator        string                `json:"discriminator" description:"Legacy discriminator, 0 for migrated users"`
	Bot                  bool                  `json:"bot"`
	AvatarDecorationData *AvatarDecorationData `json:"avatar_decoration_data,omitempty"`
	Avatar               *string               `json:"avatar" description:"The users avatar hash"`
	Clan                 *GuildTag             `json:"clan,omitempty" description:"Deprecated, use primary_guild"`
	PrimaryGuild         *GuildTag             `json:"primary_guild,omitempty"`
	Collectibles         *Collectibles         `json:"collectibles,omitempty"`
}

type AvatarDecorationData struct {
	Asset     string    `json:"asset"`
	SkuID     Snowflake `json:"sku_id"`
	ExpiresAt *int64    `json:"expires_at,omitempty"`
}

type GuildTag struct {
	Tag             string    `json:"tag"`
	IdentityGuildID Snowflake `json:"identity_guild_id"`
	Badge           string    `json:"badge"`
	IdentityEnabled bool      `json:"identity_enabled"`
}

type Collectibles struct {
	Nameplate *Nameplate `json:"nameplate,omitempty"`
}

type NameplatePalette string

const (
	NameplatePaletteCrimson   NameplatePalette = "crimson"
	NameplatePaletteBerry     NameplatePalette = "berry"
	NameplatePaletteSky       NameplatePalette = "sky"
	NameplatePaletteTeal      NameplatePalette = "teal"
	NameplatePaletteForest    NameplatePalette = "forest"
	NameplatePaletteBubbleGum NameplatePalette = "bubble_gum"
	NameplatePaletteViolet    NameplatePalette = "violet"
	NameplatePaletteCobalt    NameplatePalette = "cobalt"
	NameplatePaletteClover    NameplatePalette = "clover"
	NameplatePaletteLemon     NameplatePalette = "lemon"
	NameplatePaletteWhite     NameplatePalette = "white"
)

var knownPalettes = map[NameplatePalette]bool{
	NameplatePaletteCrimson:   true,
	NameplatePaletteBerry:     true,
	NameplatePaletteSky:       true,
	NameplatePaletteTeal:      true,
	NameplatePaletteForest:    true,
	NameplatePaletteBubbleGum: true,
	NameplatePaletteViolet:    true,
	NameplatePaletteCobalt:    true,
	NameplatePaletteClover:    true,
	NameplatePaletteLemon:     true,
	NameplatePaletteWhite:     true,
}

// Known reports whether the palette is one Discord is known to send.
// Unknown palettes are still kept as-is
func (n NameplatePalette) Known() bool {
	return knownPalettes[n]
}

type Nameplate struct {
	Label     string           `json:"label"`
	SkuID     Snowflake        `json:"sku_id"`
	Asset     string           `json:"asset"`
	ExpiresAt *string          `json:"expires_at"`
	Palette   NameplatePalette `json:"palette"`
}

type Activity struct {
	Type          int         `json:"type" description:"The activity type (0 playing, 1 streaming, 2 listening, 3 watching, 4 custom, 5 competing)"`
	State         string      `json:"state"`
	Name          string      `json:"name"`
	ID            string      `json:"id"`
	Emoji         *Emoji      `json:"emoji,omitempty"`
	CreatedAt     int64       `json:"created_at" description:"Unix milliseconds"`
	Timestamps    *Timestamps `json:"timestamps,omitempty"`
	SyncID        *string     `json:"sync_id,omitempty"`
	SessionID     *string     `json:"session_id,omitempty"`
	Party         *Party      `json:"party,omitempty"`
	Flags         *int        `json:"flags,omitempty"`
	Details       *string     `json:"details,omitempty"`
	Assets        *Assets     `json:"assets,omitempty"`
	ApplicationID *Snowflake  `json:"application_id,omitempty"`
}

func (a Activity) CreatedTime() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

type Emoji struct {
	Name     string     `json:"name"`
	ID       *Snowflake `json:"id,omitempty"`
	Animated *bool      `json:"animated,omitempty"`
}

type Party struct {
	ID   string  `json:"id"`
	Size *[2]int `json:"size,omitempty" description:"[current, max]"`
}

// Current returns the current party size, if known
func (p Party) Current() (int, bool) {
	if p.Size == nil {
		return 0, false
	}

	return p.Size[0], true
}

// Max returns the maximum party size, if known
func (p Party) Max() (int, bool) {
	if p.Size == nil {
		return 0, false
	}

	return p.Size[1], true
}

type Assets struct {
	SmallText  *string `json:"small_text,omitempty"`
	SmallImage *string `json:"small_image,omitempty"`
	LargeText  *string `json:"large_text,omitempty"`
	LargeImage *string `json:"large_image,omitempty"`
}
