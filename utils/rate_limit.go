package utils

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	Rate     rate.Limit
	Burst    int
	limiters cmap.ConcurrentMap[string, *rate.Limiter]
}

// NewRateLimiter allows `every` one request per client with bursts of burst
func NewRateLimiter(every time.Duration, burst int) *RateLimiter {
	return &RateLimiter{
		Rate:     rate.Every(every),
		Burst:    burst,
		limiters: cmap.New[*rate.Limiter](),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl.limiters.Count() > maxTrackedClients {
		rl.limiters.Clear()
	}
	limiter := rl.limiters.Upsert(key, nil, func(exist bool, valueInMap, newValue *rate.Limiter) *rate.Limiter {
		if exist {
			return valueInMap
		}
		return rate.NewLimiter(rl.Rate, rl.Burst)
	})
	return limiter.Allow()
}

// Handler rejects requests over the limit with 429
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			log.Printf("Rate limited %s %s", c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
