package httpadapter

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const corsAllowMethods = "GET,POST,DELETE,OPTIONS"
const corsAllowHeaders = "Content-Type,Authorization,X-Webhook-Signature,X-Webhook-Token"

// allowedOrigin returns the value for Access-Control-Allow-Origin, or ""
// when the request origin is not in the allow list. An empty list or "*"
// allows any origin.
func allowedOrigin(origins []string, requestOrigin string) string {
	if len(origins) == 0 {
		return "*"
	}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return "*"
		}
		if requestOrigin != "" && strings.EqualFold(o, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}

func applyCORSHeaders(ctx *app.RequestContext, origins []string) {
	origin := allowedOrigin(origins, string(ctx.GetHeader("Origin")))
	if origin == "" {
		return
	}
	ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
	if origin != "*" {
		ctx.Response.Header.Add("Vary", "Origin")
	}
	ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Max-Age", "600")
}

func corsMiddleware(origins []string) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		applyCORSHeaders(ctx, origins)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}
