package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// botPatterns are known crawler User-Agent substrings (lowercase).
var botPatterns = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot",
	"baiduspider", "yandexbot", "facebookexternalhit",
	"twitterbot", "rogerbot", "linkedinbot", "embedly",
	"quora link preview", "showyoubot", "outbrain",
	"pinterest", "applebot", "semrushbot", "ahrefsbot",
	"mj12bot", "dotbot", "petalbot", "bytespider",
}

// automationHints mark headless browsers and synthetic monitors. They get
// the same treatment as crawlers: letting them into experiments or the
// conversion funnel would skew every rate downstream.
var automationHints = []string{
	"headlesschrome", "phantomjs", "puppeteer", "playwright",
	"selenium", "lighthouse", "pingdom", "uptimerobot",
}

// BotFilter sets c.Set("is_bot", true) for known bot user agents.
// Handlers check this flag to answer bots without mutating session state,
// assigning experiment variants, or emitting conversion events.
func BotFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ua := strings.ToLower(c.Request.UserAgent())
		if ua == "" || isBot(ua) {
			c.Set("is_bot", true)
		}
		c.Next()
	}
}

func isBot(ua string) bool {
	for _, pattern := range botPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	for _, hint := range automationHints {
		if strings.Contains(ua, hint) {
			return true
		}
	}
	return false
}
