package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/no-ctrl/CSP/pkg/common"
)

func ReqId() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.HeaderRequestID)
		if rid == "" {
			rid = common.New()
		}
		c.Set(common.CtxKeyRequestID, rid)
		// Mirror into the request context so downstream code sees it too.
		ctx := context.WithValue(c.Request.Context(), common.CtxKeyRequestID, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Header(common.HeaderRequestID, rid)
		c.Next()
	}
}
