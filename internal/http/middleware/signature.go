package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/client"
)

const TwilioSignatureHeader = "X-Twilio-Signature"

// TwilioSignature rejects provider callbacks whose signature does not match the
// public URL they were sent to. baseURL is the externally visible origin; when
// empty it is rebuilt from the request.
func TwilioSignature(authToken, baseURL string, l zerolog.Logger) gin.HandlerFunc {
	validator := client.NewRequestValidator(authToken)
	baseURL = strings.TrimRight(baseURL, "/")

	return func(c *gin.Context) {
		sig := c.GetHeader(TwilioSignatureHeader)

		params := map[string]string{}
		if c.Request.Method == http.MethodPost {
			if err := c.Request.ParseForm(); err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			for k, v := range c.Request.PostForm {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}
		}

		url := publicOrigin(c, baseURL) + c.Request.URL.RequestURI()
		if sig == "" || !validator.Validate(url, params, sig) {
			l.Warn().
				Str("request_id", c.GetString(RequestIDHeader)).
				Str("url", url).
				Msg("provider signature rejected")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func publicOrigin(c *gin.Context, baseURL string) string {
	if baseURL != "" {
		return baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host
}
