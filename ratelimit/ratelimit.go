// Ratelimit implementation
package ratelimit

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/infinitybotlist/lanyard/hotcache"
)

type RLState struct {
	HotCache hotcache.HotCache[int]
}

var State *RLState

func SetupState(s *RLState) {
	State = s
}

type Ratelimit struct {
	// Expiry is the time for the ratelimit to expire
	Expiry time.Duration
	// MaxRequests is the maximum number of requests allowed in the interval specified by Expiry for the bucket
	MaxRequests int
	// Bucket is the bucket to use for the ratelimit
	Bucket string
	// Identifier is the identifier of the ratelimit, otherwise DefaultIdentifier is used
	Identifier func(r *http.Request) string
}

// Limit is used to check if the ratelimit has been exceeded
type Limit struct {
	// Exceeded is true if the ratelimit has been exceeded
	Exceeded bool
	// Made is the number of requests made in the ratelimit, including this one
	Made int
	// Remaining is the number of requests remaining in the ratelimit
	Remaining int
	// TimeToReset is the time remaining until the ratelimit resets
	TimeToReset time.Duration
	// GotIdentifier is the identifier of the ratelimit
	GotIdentifier string
	// MaxRequests is the maximum number of requests allowed in the interval specified by Expiry for the bucket
	MaxRequests int
	// Bucket is the bucket to use for the ratelimit
	Bucket string
}

func (l Limit) Headers() map[string]string {
	if l.Exceeded {
		return map[string]string{
			"Retry-After": strconv.FormatFloat(l.TimeToReset.Seconds(), 'f', -1, 64),
			"Req-Made":    strconv.Itoa(l.Made),
			"Req-Limit":   strconv.Itoa(l.MaxRequests),
			"Bucket":      l.Bucket,
		}
	}

	return map[string]string{
		"Req-Made":      strconv.Itoa(l.Made),
		"Req-Limit":     strconv.Itoa(l.MaxRequests),
		"Req-Remaining": strconv.Itoa(l.Remaining),
		"Bucket":        l.Bucket,
	}
}

func (rl Ratelimit) Limit(ctx context.Context, r *http.Request) (Limit, error) {
	if State == nil {
		return Limit{}, errors.New("ratelimit state not setup")
	}

	if rl.Identifier == nil {
		rl.Identifier = DefaultIdentifier
	}

	// Hash the identifier for privacy
	identifier := fmt.Sprintf("%x", sha256.Sum256([]byte(rl.Identifier(r))))

	key := rl.Bucket + "-" + identifier

	count, resetTime, err := State.HotCache.IncrementWithExpiry(ctx, key, rl.Expiry)

	if err != nil {
		return Limit{GotIdentifier: identifier}, err
	}

	made := int(count)
	exceeded := made > rl.MaxRequests
	remaining := rl.MaxRequests - made

	if remaining < 0 {
		remaining = 0
	}

	return Limit{
		GotIdentifier: identifier,
		Exceeded:      exceeded,
		Made:          made,
		Remaining:     remaining,
		TimeToReset:   resetTime,
		MaxRequests:   rl.MaxRequests,
		Bucket:        rl.Bucket,
	}, nil
}

// DefaultIdentifier keys on the client IP. The port is dropped so a client
// cannot get a fresh bucket by opening a new connection
func DefaultIdentifier(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err != nil {
		// Already a bare host, e.g. when set by middleware.RealIP
		return r.RemoteAddr
	}

	return host
}
