package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/myzend/internal/feed"
	"github.com/user/myzend/internal/middleware"
	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/service"
	"github.com/user/myzend/internal/store"
	"github.com/user/myzend/internal/utils"
)

// ==================== 认证 ====================

// APILogin 登录接口，返回 JWT
func (h *Handler) APILogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	user, err := h.Repos.User.FindByEmail(req.Email)
	if err != nil || user == nil || !h.Repos.User.CheckPassword(user, req.Password) {
		utils.Unauthorized(c, "Correo o contraseña incorrectos")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Name, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "No se pudo iniciar sesión, inténtalo de nuevo")
		return
	}

	h.establishSession(c, user, token)
	utils.Success(c, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

// APIRegister 注册接口
func (h *Handler) APIRegister(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	existing, _ := h.Repos.User.FindByEmail(req.Email)
	if existing != nil {
		utils.BadRequest(c, "Ese correo ya está registrado")
		return
	}

	user, err := h.Repos.User.Create(req.Email, req.Name, req.Password)
	if err != nil {
		utils.InternalServerError(c, "No se pudo crear la cuenta, inténtalo de nuevo")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Name, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "Cuenta creada, pero no se pudo iniciar sesión; entra de nuevo")
		return
	}

	h.establishSession(c, user, token)
	utils.Success(c, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

// ==================== 情绪与推荐 ====================

// APIEmotion 选择情绪并加载推荐
func (h *Handler) APIEmotion(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		Emotion string `json:"emotion" binding:"required,emotion"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Estado de ánimo inválido")
		return
	}

	emotion := model.Emotion(req.Emotion)
	if err := s.SetSelectedEmotion(emotion); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	h.loadFeed(s, emotion)

	snap := s.Snapshot()
	utils.Success(c, gin.H{
		"emotion": emotion,
		"videos":  snap.Videos,
		"index":   snap.Index,
		"error":   s.LastError(),
	})
}

// loadFeed 为指定情绪加载推荐列表
// 优先抓真实 Shorts，失败退 LLM 推荐。两者都失败时由这里替换成
// 内置样例列表，错误状态随后写入会话（写列表会清掉旧错误，顺序不能反）
func (h *Handler) loadFeed(s *store.Store, emotion model.Emotion) {
	s.SetLoading(true)

	videos, err := h.Shorts.ForEmotion(emotion)
	if err != nil {
		log.Printf("Shorts 加载失败，改用 LLM 推荐: %v", err)
		videos, err = h.Recommend.RecommendVideos(emotion, s.History())
	}
	if err != nil || len(videos) == 0 {
		log.Printf("推荐加载失败，替换为样例列表: %v", err)
		fallback := service.FallbackVideos(emotion)
		s.SetVideoRecommendations(fallback)
		s.SetError("No pudimos cargar videos nuevos, mostrando sugerencias")
		return
	}
	s.SetVideoRecommendations(videos)
}

// APIRefreshFeed 重新加载当前情绪的推荐
func (h *Handler) APIRefreshFeed(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}
	emotion := s.SelectedEmotion()
	if emotion == "" {
		utils.BadRequest(c, "Elige primero cómo te sientes")
		return
	}

	h.loadFeed(s, emotion)
	snap := s.Snapshot()
	utils.Success(c, gin.H{
		"videos": snap.Videos,
		"index":  snap.Index,
		"error":  s.LastError(),
	})
}

// ==================== 互动 ====================

// APIInteraction 记录互动（like / save / report）
// 单一写入口：历史追加、衍生集合、落库、LLM 调优都从这里出发
func (h *Handler) APIInteraction(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		VideoID        string `json:"video_id" binding:"required"`
		VideoURL       string `json:"video_url"`
		VideoTitle     string `json:"video_title"`
		VideoThumbnail string `json:"video_thumbnail"`
		Type           string `json:"interaction_type" binding:"required,interaction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	video := model.Video{
		ID:           req.VideoID,
		URL:          req.VideoURL,
		Description:  req.VideoTitle,
		ThumbnailURL: req.VideoThumbnail,
	}
	interaction, err := s.RecordInteraction(video, model.InteractionType(req.Type))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// 收藏的视频建向量索引，用于"相关收藏"
	if interaction.Type == model.InteractionSave {
		h.Embedding.IndexAsync(video)
	}

	// 后台请求 LLM 调优建议，结果只记录，由下一次刷新消费
	go h.refineInBackground(s, interaction)

	utils.Success(c, gin.H{
		"interaction": interaction,
		"liked":       s.IsMarked(model.MarkLiked, req.VideoID),
		"saved":       s.IsMarked(model.MarkSaved, req.VideoID),
		"disliked":    s.IsMarked(model.MarkDisliked, req.VideoID),
	})
}

// refineInBackground 请求调优建议并持久化
func (h *Handler) refineInBackground(s *store.Store, interaction model.UserInteraction) {
	snap := s.Snapshot()
	previous := make([]string, 0, len(snap.Videos))
	for _, v := range snap.Videos {
		previous = append(previous, v.ID)
	}

	result, err := h.Recommend.ImproveRecommendations(
		interaction.UserID, interaction.Emotion, interaction.VideoID, interaction.Type, previous)
	if err != nil {
		log.Printf("调优建议生成失败: %v", err)
		return
	}

	h.Outbox.Submit("refinement", func() error {
		return h.Repos.Refinement.Create(result)
	})
}

// APIRemoveMark 把视频移出喜欢/收藏/不喜欢集合
func (h *Handler) APIRemoveMark(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		List    string `json:"list" binding:"required"`
		VideoID string `json:"video_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	if err := s.RemoveMark(model.MarkList(req.List), req.VideoID); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.Success(c, nil)
}

// ==================== 用户数据 ====================

// APIUserInteractions 用户互动历史（只能查自己的）
func (h *Handler) APIUserInteractions(c *gin.Context) {
	email := c.Param("email")
	if email != middleware.GetEmail(c) {
		utils.Unauthorized(c, "Solo puedes consultar tus propios datos")
		return
	}

	interactions, err := h.Repos.Interaction.ListByEmail(email)
	if err != nil {
		utils.InternalServerError(c, "No se pudo consultar")
		return
	}
	utils.Success(c, interactions)
}

// APIUserEmotions 用户情绪历史（只能查自己的）
func (h *Handler) APIUserEmotions(c *gin.Context) {
	email := c.Param("email")
	if email != middleware.GetEmail(c) {
		utils.Unauthorized(c, "Solo puedes consultar tus propios datos")
		return
	}

	logs, err := h.Repos.EmotionLog.ListByEmail(email, 100)
	if err != nil {
		utils.InternalServerError(c, "No se pudo consultar")
		return
	}
	utils.Success(c, logs)
}

// ==================== Shorts ====================

// APIShorts 按频道抓取 Shorts 播放地址列表
func (h *Handler) APIShorts(c *gin.Context) {
	var req struct {
		ChannelHandle string `json:"channel_handle" binding:"required"`
		Limit         int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	videos, err := h.Shorts.FetchChannel(req.ChannelHandle)
	if err != nil {
		utils.InternalServerError(c, "No se pudieron obtener los shorts")
		return
	}
	if req.Limit > 0 && len(videos) > req.Limit {
		videos = videos[:req.Limit]
	}
	urls := make([]string, 0, len(videos))
	for _, v := range videos {
		urls = append(urls, v.URL)
	}
	utils.Success(c, gin.H{"shorts_urls": urls})
}

// ==================== 信息流控制 ====================

// APIFeedState 当前播放状态
func (h *Handler) APIFeedState(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}
	snap := s.Snapshot()
	utils.Success(c, gin.H{
		"videos":   snap.Videos,
		"index":    snap.Index,
		"mode":     string(snap.Mode),
		"narrowed": snap.Narrowed,
		"loading":  s.Loading(),
		"error":    s.LastError(),
	})
}

// APIFeedAdvance 推进播放位置
// driver 标明驱动方，与当前模式不符的推进会被忽略
func (h *Handler) APIFeedAdvance(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		Driver string `json:"driver" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}
	if !feed.ValidMode(req.Driver) {
		utils.BadRequest(c, "Origen de avance inválido")
		return
	}

	current, ok := s.AdvanceFeed(feed.Mode(req.Driver))
	snap := s.Snapshot()
	utils.Success(c, gin.H{
		"index":   snap.Index,
		"current": current,
		"has":     ok,
	})
}

// APIFeedMode 切换推进模式
func (h *Handler) APIFeedMode(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}
	if err := s.SetFeedMode(feed.Mode(req.Mode)); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"mode": req.Mode})
}

// APIFeedIndex 手动跳到指定位置（仅手动模式）
func (h *Handler) APIFeedIndex(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	s.SetFeedIndex(req.Index)
	snap := s.Snapshot()
	utils.Success(c, gin.H{"index": snap.Index})
}

// APIFeedJump 跳到指定视频
func (h *Handler) APIFeedJump(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		utils.Unauthorized(c, "Sesión no iniciada")
		return
	}

	var req struct {
		VideoID string `json:"video_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Datos de solicitud inválidos")
		return
	}

	if !s.JumpToVideo(req.VideoID) {
		utils.NotFound(c, "El video no está en la lista actual")
		return
	}
	snap := s.Snapshot()
	utils.Success(c, gin.H{"index": snap.Index})
}

// ==================== 相关视频 ====================

// APIRelatedVideos 按向量相似度查相关视频
func (h *Handler) APIRelatedVideos(c *gin.Context) {
	videoID := c.Param("id")
	if videoID == "" {
		utils.BadRequest(c, "Falta el ID del video")
		return
	}

	videos, err := h.Embedding.RelatedVideos(videoID, 6)
	if err != nil {
		utils.InternalServerError(c, "No se pudo consultar")
		return
	}
	utils.Success(c, videos)
}

// ==================== htmx 局部刷新 ====================

// MarkVideo 收藏/喜欢按钮（htmx 提交，返回按钮局部模板）
func (h *Handler) MarkVideo(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		c.String(http.StatusUnauthorized, "")
		return
	}

	interactionType := c.Param("type")
	if !model.ValidInteractionType(interactionType) {
		c.String(http.StatusBadRequest, "Tipo de interacción inválido")
		return
	}

	video := model.Video{
		ID:           c.PostForm("video_id"),
		URL:          c.PostForm("video_url"),
		Description:  c.PostForm("video_title"),
		ThumbnailURL: c.PostForm("video_thumbnail"),
	}
	if video.ID == "" {
		c.String(http.StatusBadRequest, "Falta el ID del video")
		return
	}

	interaction, err := s.RecordInteraction(video, model.InteractionType(interactionType))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if interaction.Type == model.InteractionSave {
		h.Embedding.IndexAsync(video)
	}
	go h.refineInBackground(s, interaction)

	c.HTML(http.StatusOK, "partials/mark_buttons.html", gin.H{
		"Video":    video,
		"Liked":    s.IsMarked(model.MarkLiked, video.ID),
		"Saved":    s.IsMarked(model.MarkSaved, video.ID),
		"Disliked": s.IsMarked(model.MarkDisliked, video.ID),
	})
}

// UnmarkVideo 取消收藏/喜欢（htmx 提交）
func (h *Handler) UnmarkVideo(c *gin.Context) {
	s := h.sessionStore(c)
	if s == nil {
		c.String(http.StatusUnauthorized, "")
		return
	}

	list := model.MarkList(c.Param("list"))
	videoID := c.PostForm("video_id")
	if err := s.RemoveMark(list, videoID); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	c.HTML(http.StatusOK, "partials/mark_buttons.html", gin.H{
		"Video":    model.Video{ID: videoID},
		"Liked":    s.IsMarked(model.MarkLiked, videoID),
		"Saved":    s.IsMarked(model.MarkSaved, videoID),
		"Disliked": s.IsMarked(model.MarkDisliked, videoID),
	})
}
