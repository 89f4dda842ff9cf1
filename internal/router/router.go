package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/myzend/internal/handler"
	"github.com/user/myzend/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 公开页面 ====================
	r.GET("/", middleware.OptionalAuth(h.Config.AppSecret), h.Home)

	// ==================== 认证页面 ====================
	auth := r.Group("/auth")
	auth.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		auth.GET("/login", h.LoginPage)
		auth.POST("/login", h.Login)
		auth.GET("/register", h.RegisterPage)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}

	// ==================== 用户页面（需要登录）====================
	pages := r.Group("")
	pages.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		pages.GET("/feed", h.Feed)
		pages.GET("/profile", h.Profile)
		pages.GET("/favorites", h.Favorites)
		pages.GET("/settings", h.Settings)
		pages.POST("/settings/name", h.UpdateName)
		pages.POST("/settings/password", h.UpdatePassword)
	}

	// ==================== JSON API ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.POST("/login", h.APILogin)
		api.POST("/register", h.APIRegister)

		api.POST("/emotion", h.APIEmotion)
		api.POST("/interaction", h.APIInteraction)
		api.POST("/mark/remove", h.APIRemoveMark)

		api.GET("/user/:email/interactions", h.APIUserInteractions)
		api.GET("/user/:email/emotions", h.APIUserEmotions)

		api.POST("/youtube/shorts", h.APIShorts)
		api.GET("/related/:id", h.APIRelatedVideos)

		// 信息流控制
		api.GET("/feed", h.APIFeedState)
		api.POST("/feed/refresh", h.APIRefreshFeed)
		api.POST("/feed/advance", h.APIFeedAdvance)
		api.POST("/feed/mode", h.APIFeedMode)
		api.POST("/feed/index", h.APIFeedIndex)
		api.POST("/feed/jump", h.APIFeedJump)

		// htmx 局部刷新
		api.POST("/mark/:type", h.MarkVideo)
		api.POST("/unmark/:list", h.UnmarkVideo)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
		"js": func(s string) template.JS {
			return template.JS(s)
		},
	}

	// 注册所有页面模板
	pages := []string{
		"home", "feed", "profile", "favorites", "settings",
		"login", "register", "404",
	}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	// 局部模板单独注册一份，供 htmx 接口直接渲染
	for _, partial := range partials {
		name := "partials/" + filepath.Base(partial)
		r.AddFromFilesFuncs(name, funcMap, partial)
	}

	return r
}
