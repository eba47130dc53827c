package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns the CORS middleware for browser storefronts that post
// orders and poll order status directly. It returns nil when CORS is disabled or no
// usable origin is configured.
//
// allowOriginsStr is a comma-separated list of origins such as
// "https://shop.example.com". A lone "*" allows every origin.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, rejected := parseOrigins(allowOriginsStr)
	for _, origin := range rejected {
		logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
	}
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list. Entries that are not an http(s)
// scheme plus host, with no path, are returned in rejected. "*" is only accepted on its
// own.
func parseOrigins(originsStr string) (origins []string, rejected []string) {
	if strings.TrimSpace(originsStr) == "" {
		return nil, nil
	}

	for _, part := range strings.Split(originsStr, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin == "" {
			continue
		}
		if origin == "*" || validOrigin(origin) {
			origins = append(origins, origin)
			continue
		}
		rejected = append(rejected, origin)
	}

	for _, origin := range origins {
		if origin == "*" && len(origins) > 1 {
			return nil, append(rejected, origins...)
		}
	}
	return origins, rejected
}

func validOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && u.Path == "" &&
		u.RawQuery == "" && u.Fragment == ""
}
