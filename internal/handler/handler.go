package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user/myzend/internal/config"
	"github.com/user/myzend/internal/middleware"
	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/repository"
	"github.com/user/myzend/internal/service"
	"github.com/user/myzend/internal/store"
)

// shortsSource Shorts 数据源（测试时可替换）
type shortsSource interface {
	ForEmotion(emotion model.Emotion) ([]model.Video, error)
	FetchChannel(handle string) ([]model.Video, error)
}

// recommender LLM 推荐与调优（测试时可替换）
type recommender interface {
	RecommendVideos(emotion model.Emotion, history []model.UserInteraction) ([]model.Video, error)
	ImproveRecommendations(userID int, emotion model.Emotion, videoID string, t model.InteractionType, previous []string) (*model.RefinementLog, error)
}

// Handler HTTP 处理器
type Handler struct {
	Repos     *repository.Repositories
	Config    *config.Config
	Sessions  *store.Manager
	Recommend recommender
	Shorts    shortsSource
	Embedding *service.EmbeddingService
	Outbox    *service.Outbox
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config, outbox *service.Outbox) *Handler {
	return &Handler{
		Repos:     repos,
		Config:    cfg,
		Sessions:  store.NewManager(1024, outbox),
		Recommend: service.NewRecommendService(cfg.GeminiAPIKey, cfg.GeminiModel),
		Shorts:    service.NewShortsService(repos.ShortsCache, cfg.ShortsLimit, cfg.ShortsCacheTTL),
		Embedding: service.NewEmbeddingService(repos.Embedding, cfg.OllamaHost, cfg.OllamaModel),
		Outbox:    outbox,
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	// 基础数据
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
		"Referer":  c.Request.Referer(),
	}

	// 注入用户信息
	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			res["UserInfo"] = su
		}
	}

	// 菜单高亮逻辑
	res["ActiveMenu"] = h.getActiveMenu(c.Request.URL.Path)

	// 合并传入的数据
	for k, v := range data {
		res[k] = v
	}

	return res
}

// getActiveMenu 根据路径判断当前高亮菜单
func (h *Handler) getActiveMenu(path string) string {
	switch path {
	case "/":
		return "home"
	case "/feed":
		return "feed"
	case "/profile", "/settings":
		return "profile"
	case "/favorites":
		return "favorites"
	default:
		return ""
	}
}

// sessionStore 已登录用户的会话容器，未登录返回 nil
func (h *Handler) sessionStore(c *gin.Context) *store.Store {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return nil
	}
	if s := h.Sessions.Peek(userID); s != nil {
		return s
	}
	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		return nil
	}
	return h.Sessions.Get(user)
}

// rebuildStore 用数据库里的权威日志重建会话的历史与衍生集合
func (h *Handler) rebuildStore(s *store.Store) {
	user := s.User()
	if user == nil {
		return
	}
	if interactions, err := h.Repos.Interaction.ListByEmail(user.Email); err == nil {
		s.RebuildFromHistory(interactions)
	}
	// 标记集合以 saved_videos 表为准：互动日志只增不删，推导会复活已取消的标记
	for _, list := range []model.MarkList{model.MarkLiked, model.MarkSaved, model.MarkDisliked} {
		rows, err := h.Repos.SavedVideo.ListByUser(user.ID, list, 200, 0)
		if err != nil {
			continue
		}
		videos := make([]model.Video, 0, len(rows))
		for _, row := range rows {
			videos = append(videos, row.Video())
		}
		s.SetMarks(list, videos)
	}
	if logs, err := h.Repos.EmotionLog.ListByEmail(user.Email, 50); err == nil {
		s.SetEmotionHistory(logs)
	}
}

// ==================== 页面 ====================

// Home 首页（情绪选择）
func (h *Handler) Home(c *gin.Context) {
	var selected model.Emotion
	if s := h.sessionStore(c); s != nil {
		selected = s.SelectedEmotion()
	}

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title":    h.Config.SiteName + " - ¿Cómo te sientes hoy?",
		"Emotions": model.Emotions,
		"Selected": selected,
	}))
}

// Feed 信息流页面
// 带 videoId 参数时是深链：定位到该视频，不在列表里则单视频收窄播放
func (h *Handler) Feed(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		c.Redirect(http.StatusFound, "/auth/login?redirect=/feed")
		return
	}
	emotion := s.SelectedEmotion()
	if emotion == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if videoID := c.Query("videoId"); videoID != "" {
		if !s.JumpToVideo(videoID) {
			// 不在当前列表：从收藏记录还原并收窄播放
			if sv, err := h.Repos.SavedVideo.FindByVideoID(s.User().ID, model.MarkSaved, videoID); err == nil && sv != nil {
				s.NarrowFeed(sv.Video())
			} else if sv, err := h.Repos.SavedVideo.FindByVideoID(s.User().ID, model.MarkLiked, videoID); err == nil && sv != nil {
				s.NarrowFeed(sv.Video())
			}
		}
	}

	snap := s.Snapshot()
	c.HTML(http.StatusOK, "feed.html", h.RenderData(c, gin.H{
		"Title":           "Tu feed - " + h.Config.SiteName,
		"Emotion":         emotion,
		"Videos":          snap.Videos,
		"Index":           snap.Index,
		"Mode":            string(snap.Mode),
		"Narrowed":        snap.Narrowed,
		"Loading":         s.Loading(),
		"Error":           s.LastError(),
		"AutoAdvanceSecs": h.Config.AutoAdvanceSecs,
		"PageSize":        h.Config.FeedPageSize,
	}))
}

// Profile 个人档案页
func (h *Handler) Profile(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		c.Redirect(http.StatusFound, "/auth/login?redirect=/profile")
		return
	}
	// 挂载时以数据库为准重建，避免与其他端产生分叉
	h.rebuildStore(s)

	user := s.User()
	interactionCount, _ := h.Repos.Interaction.CountByUser(user.ID)
	likeCount, _ := h.Repos.Interaction.CountByUserAndType(user.ID, model.InteractionLike)
	saveCount, _ := h.Repos.Interaction.CountByUserAndType(user.ID, model.InteractionSave)
	trends, _ := h.Repos.EmotionLog.GetTrends(user.ID, 6)
	refinements, _ := h.Repos.Refinement.ListByUser(user.ID, 10)

	c.HTML(http.StatusOK, "profile.html", h.RenderData(c, gin.H{
		"Title":            "Mi perfil - " + h.Config.SiteName,
		"User":             user,
		"InteractionCount": interactionCount,
		"LikeCount":        likeCount,
		"SaveCount":        saveCount,
		"History":          s.History(),
		"EmotionHistory":   s.EmotionHistory(),
		"Trends":           trends,
		"Refinements":      refinements,
	}))
}

// Favorites 收藏页
func (h *Handler) Favorites(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		c.Redirect(http.StatusFound, "/auth/login?redirect=/favorites")
		return
	}
	h.rebuildStore(s)

	c.HTML(http.StatusOK, "favorites.html", h.RenderData(c, gin.H{
		"Title":    "Mis videos - " + h.Config.SiteName,
		"Liked":    s.Marked(model.MarkLiked),
		"Saved":    s.Marked(model.MarkSaved),
		"Disliked": s.Marked(model.MarkDisliked),
	}))
}

// ==================== 认证页面 ====================

// LoginPage 登录页面
func (h *Handler) LoginPage(c *gin.Context) {
	// 如果已经登录，直接跳转到首页
	if middleware.GetUserID(c) > 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
		"Title":    "Entrar - " + h.Config.SiteName,
		"Redirect": c.Query("redirect"),
	}))
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	redirect := c.PostForm("redirect")

	if redirect == "" {
		redirect = "/"
	}

	// 查找用户
	user, err := h.Repos.User.FindByEmail(email)
	if err != nil || user == nil {
		c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
			"Title": "Entrar - " + h.Config.SiteName,
			"Error": "Correo o contraseña incorrectos",
		}))
		return
	}

	// 验证密码
	if !h.Repos.User.CheckPassword(user, password) {
		c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
			"Title": "Entrar - " + h.Config.SiteName,
			"Error": "Correo o contraseña incorrectos",
		}))
		return
	}

	// 生成 JWT
	token, err := middleware.GenerateToken(user.ID, user.Email, user.Name, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", h.RenderData(c, gin.H{
			"Title": "Entrar - " + h.Config.SiteName,
			"Error": "No se pudo iniciar sesión, inténtalo de nuevo",
		}))
		return
	}

	h.establishSession(c, user, token)
	c.Redirect(http.StatusFound, redirect)
}

// RegisterPage 注册页面
func (h *Handler) RegisterPage(c *gin.Context) {
	// 如果已经登录，直接跳转到首页
	if middleware.GetUserID(c) > 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
		"Title": "Crear cuenta - " + h.Config.SiteName,
	}))
}

// Register 注册处理
func (h *Handler) Register(c *gin.Context) {
	email := c.PostForm("email")
	name := strings.TrimSpace(c.PostForm("name"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	// 验证
	if password != confirmPassword {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title": "Crear cuenta - " + h.Config.SiteName,
			"Error": "Las contraseñas no coinciden",
		}))
		return
	}

	if len(password) < 6 {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title": "Crear cuenta - " + h.Config.SiteName,
			"Error": "La contraseña necesita al menos 6 caracteres",
		}))
		return
	}

	// 检查邮箱是否已存在
	existing, _ := h.Repos.User.FindByEmail(email)
	if existing != nil {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title": "Crear cuenta - " + h.Config.SiteName,
			"Error": "Ese correo ya está registrado",
		}))
		return
	}

	// 默认截取邮箱 @ 符号前的内容作为昵称
	if name == "" {
		if parts := strings.Split(email, "@"); len(parts) > 0 {
			name = parts[0]
		}
	}

	user, err := h.Repos.User.Create(email, name, password)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", h.RenderData(c, gin.H{
			"Title": "Crear cuenta - " + h.Config.SiteName,
			"Error": "No se pudo crear la cuenta, inténtalo de nuevo",
		}))
		return
	}

	// 生成 JWT 并登录
	token, _ := middleware.GenerateToken(user.ID, user.Email, user.Name, h.Config.AppSecret, h.Config.JWTExpiry)
	h.establishSession(c, user, token)
	c.Redirect(http.StatusFound, "/")
}

// Logout 登出
// 级联清空会话容器：情绪、推荐、历史与衍生集合全部复位
func (h *Handler) Logout(c *gin.Context) {
	if userID := middleware.GetUserID(c); userID > 0 {
		h.Sessions.Drop(userID)
	}

	c.SetCookie("token", "", -1, "/", "", false, true)

	// 清理 Session
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

// establishSession 设置 Cookie 与 Session 并初始化会话容器
func (h *Handler) establishSession(c *gin.Context, user *model.User, token string) {
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	session := sessions.Default(c)
	session.Set("userinfo", model.SessionUser{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
	session.Save()

	s := h.Sessions.Get(user)
	h.rebuildStore(s)
}

// ==================== 账号设置 ====================

// Settings 账号设置
func (h *Handler) Settings(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	success := c.Query("success")

	c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
		"Title":   "Ajustes - " + h.Config.SiteName,
		"User":    user,
		"Success": success,
	}))
}

// UpdateName 修改昵称
func (h *Handler) UpdateName(c *gin.Context) {
	userID := middleware.GetUserID(c)
	newName := strings.TrimSpace(c.PostForm("name"))

	if newName == "" || len(newName) < 2 || len(newName) > 20 {
		c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
			"Title": "Ajustes - " + h.Config.SiteName,
			"Error": "El nombre debe tener entre 2 y 20 caracteres",
		}))
		return
	}

	if err := h.Repos.User.UpdateName(userID, newName); err != nil {
		c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
			"Title": "Ajustes - " + h.Config.SiteName,
			"Error": "No se pudo actualizar el nombre",
		}))
		return
	}

	// 更新 Session 中的昵称
	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			su.Name = newName
			session.Set("userinfo", su)
			session.Save()
		}
	}

	c.Redirect(http.StatusFound, "/settings?success=name")
}

// UpdatePassword 修改密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	currentPassword := c.PostForm("current_password")
	newPassword := c.PostForm("new_password")
	confirmPassword := c.PostForm("confirm_password")

	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	// 验证当前密码
	if !h.Repos.User.CheckPassword(user, currentPassword) {
		c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
			"Title": "Ajustes - " + h.Config.SiteName,
			"User":  user,
			"Error": "La contraseña actual es incorrecta",
		}))
		return
	}

	if newPassword != confirmPassword {
		c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
			"Title": "Ajustes - " + h.Config.SiteName,
			"User":  user,
			"Error": "Las contraseñas nuevas no coinciden",
		}))
		return
	}

	if len(newPassword) < 6 {
		c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
			"Title": "Ajustes - " + h.Config.SiteName,
			"User":  user,
			"Error": "La contraseña nueva necesita al menos 6 caracteres",
		}))
		return
	}

	if err := h.Repos.User.UpdatePassword(userID, newPassword); err != nil {
		c.HTML(http.StatusOK, "settings.html", h.RenderData(c, gin.H{
			"Title": "Ajustes - " + h.Config.SiteName,
			"User":  user,
			"Error": "No se pudo actualizar la contraseña",
		}))
		return
	}

	c.Redirect(http.StatusFound, "/settings?success=password")
}
