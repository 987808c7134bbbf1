package dovewing

import (
	"github.com/bwmarrin/discordgo"
	"github.com/infinitybotlist/lanyard/dovewing/dovetypes"
	"github.com/infinitybotlist/lanyard/lanyard"
)

func discordPlatformStatus(status discordgo.Status) dovetypes.PlatformStatus {
	switch status {
	case discordgo.StatusOnline:
		return dovetypes.PlatformStatusOnline
	case discordgo.StatusIdle:
		return dovetypes.PlatformStatusIdle
	case discordgo.StatusDoNotDisturb:
		return dovetypes.PlatformStatusDoNotDisturb
	default:
		return dovetypes.PlatformStatusOffline
	}
}

var publicFlags = []struct {
	flag discordgo.UserFlags
	name string
}{
	{discordgo.UserFlagDiscordEmployee, "staff"},
	{discordgo.UserFlagDiscordPartner, "partner"},
	{discordgo.UserFlagHypeSquadEvents, "hypesquad_events"},
	{discordgo.UserFlagBugHunterLevel1, "bug_hunter_level_1"},
	{discordgo.UserFlagHouseBravery, "hypesquad_bravery"},
	{discordgo.UserFlagHouseBrilliance, "hypesquad_brilliance"},
	{discordgo.UserFlagHouseBalance, "hypesquad_balance"},
	{discordgo.UserFlagEarlySupporter, "early_supporter"},
	{discordgo.UserFlagBugHunterLevel2, "bug_hunter_level_2"},
	{discordgo.UserFlagVerifiedBotDeveloper, "verified_developer"},
}

func discordFlags(flags int64) []string {
	names := []string{}

	for _, f := range publicFlags {
		if discordgo.UserFlags(flags)&f.flag == f.flag {
			names = append(names, f.name)
		}
	}

	return names
}

// Converts the lanyard user into a discordgo one so discordgo can resolve CDN urls
func discordUser(u lanyard.DiscordUser) *discordgo.User {
	du := &discordgo.User{
		ID:            string(u.ID),
		Username:      u.Username,
		Discriminator: u.Discriminator,
		Bot:           u.Bot,
		PublicFlags:   discordgo.UserFlags(u.PublicFlags),
	}

	if u.Avatar != nil {
		du.Avatar = *u.Avatar
	}

	if u.GlobalName != nil {
		du.GlobalName = *u.GlobalName
	}

	return du
}

// ActivitySummary returns a one line description such as "Listening to Spotify"
func ActivitySummary(a lanyard.Activity) string {
	switch discordgo.ActivityType(a.Type) {
	case discordgo.ActivityTypeGame:
		return "Playing " + a.Name
	case discordgo.ActivityTypeStreaming:
		return "Streaming " + a.Name
	case discordgo.ActivityTypeListening:
		return "Listening to " + a.Name
	case discordgo.ActivityTypeWatching:
		return "Watching " + a.Name
	case discordgo.ActivityTypeCustom:
		if a.Emoji != nil && a.State != "" {
			return a.Emoji.Name + " " + a.State
		}

		if a.State != "" {
			return a.State
		}

		return a.Name
	case discordgo.ActivityTypeCompeting:
		return "Competing in " + a.Name
	default:
		return a.Name
	}
}
