package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger 请求日志中间件
// 静态资源不打日志，信息流接口调用频繁，带上来源 IP 方便排查刷量
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		if strings.HasPrefix(c.Request.URL.Path, "/static/") {
			return
		}

		log.Printf("%s %s %d %v %s",
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}
