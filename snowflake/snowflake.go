// Helpers for Discord snowflakes
package snowflake

import (
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

var ErrInvalidSnowflake = errors.New("invalid snowflake")

// Validate checks that id looks like a Discord snowflake
func Validate(id string) (string, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", ErrInvalidSnowflake
	}

	// For all practical purposes, a simple length check can handle a lot of illegal IDs
	if len(id) <= 16 || len(id) > 20 {
		return "", ErrInvalidSnowflake
	}

	return id, nil
}

// CreatedAt returns when the entity behind a snowflake was created
func CreatedAt(id string) (time.Time, error) {
	if _, err := Validate(id); err != nil {
		return time.Time{}, err
	}

	return discordgo.SnowflakeTimestamp(id)
}
