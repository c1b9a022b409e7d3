package httpadapter

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const unmatchedRoute = "unmatched"

// accessLog records every request against its route pattern so that path
// parameters do not blow up metric cardinality.
func (h Handler) accessLog() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)

		route := ctx.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		route = string(ctx.Method()) + " " + route
		status := ctx.Response.StatusCode()
		if h.Metrics != nil {
			h.Metrics.RecordRequest(route, status)
		}
		hlog.CtxDebugf(c, "%s %s status=%d latency=%s", ctx.Method(), ctx.Path(), status, time.Since(start))
	}
}
