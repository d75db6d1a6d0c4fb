// Package httpapi exposes stories games as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/platform/errors/i18n"
	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/services/stories/engine"
	"github.com/louisbranch/stories/internal/services/stories/storage"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// Games is the game service the API is served from.
type Games interface {
	Genres() ([]string, error)
	CreateGame(ctx context.Context, genre string, params engine.Parameters) (string, error)
	AddPlayer(ctx context.Context, gameID, name, initials, role string) (engine.PlayerPayload, error)
	Execute(ctx context.Context, gameID, line, actor string) (engine.Result, error)
	Status(ctx context.Context, gameID, ref string) (engine.Snapshot, error)
	ReadStory(ctx context.Context, gameID, ref string, numbered bool) (string, error)
	PublishedStories(ctx context.Context, gameID string) ([]storage.PublishedStory, error)
	ListGames(ctx context.Context, pageSize int, pageToken string) (storage.GamePage, error)
}

type handler struct {
	games  Games
	logger *zap.Logger
}

// NewHandler returns the API router.
func NewHandler(games Games, logger *zap.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	h := &handler{games: games, logger: logging.OrNop(logger)}

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog())
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/genres", h.genres)
		api.GET("/games", h.listGames)
		api.POST("/games", h.createGame)
		api.POST("/games/:id/players", h.addPlayer)
		api.POST("/games/:id/commands", h.execute)
		api.GET("/games/:id/status", h.status)
		api.GET("/games/:id/story", h.story)
		api.GET("/games/:id/stories", h.publishedStories)
	}
	return r
}

type createGameRequest struct {
	Genre      string             `json:"genre" binding:"required"`
	Parameters *engine.Parameters `json:"parameters"`
}

type addPlayerRequest struct {
	Name     string `json:"name"`
	Initials string `json:"initials" binding:"required"`
	Role     string `json:"role"`
}

type commandRequest struct {
	Command string `json:"command" binding:"required"`
	Player  string `json:"player"`
}

type errorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

type gameSummary struct {
	ID       string `json:"id"`
	Genre    string `json:"genre"`
	Finished bool   `json:"finished"`
}

type publishedStory struct {
	Owner       string `json:"owner"`
	Text        string `json:"text"`
	PublishedAt string `json:"published_at"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) genres(c *gin.Context) {
	genres, err := h.games.Genres()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (h *handler) listGames(c *gin.Context) {
	pageSize := defaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(c, apperrors.WithMetadata(apperrors.CodeInvalidArgument,
				"page_size must be a positive number", map[string]string{"Argument": raw}))
			return
		}
		pageSize = n
	}
	page, err := h.games.ListGames(c.Request.Context(), pageSize, c.Query("page_token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	games := make([]gameSummary, 0, len(page.Games))
	for _, g := range page.Games {
		games = append(games, gameSummary{ID: g.ID, Genre: g.Genre, Finished: g.Finished})
	}
	c.JSON(http.StatusOK, gin.H{"games": games, "next_page_token": page.NextPageToken})
}

func (h *handler) createGame(c *gin.Context) {
	var req createGameRequest
	if !h.bind(c, &req) {
		return
	}
	params := engine.DefaultParameters()
	if req.Parameters != nil {
		params = *req.Parameters
	}
	gameID, err := h.games.CreateGame(c.Request.Context(), req.Genre, params)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"game_id": gameID})
}

func (h *handler) addPlayer(c *gin.Context) {
	var req addPlayerRequest
	if !h.bind(c, &req) {
		return
	}
	joined, err := h.games.AddPlayer(c.Request.Context(), c.Param("id"), req.Name, req.Initials, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"number": joined.Number, "player": joined})
}

func (h *handler) execute(c *gin.Context) {
	var req commandRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.games.Execute(c.Request.Context(), c.Param("id"), req.Command, req.Player)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if !res.OK() {
		status = res.Kind.HTTPStatus()
	}
	c.JSON(status, res)
}

func (h *handler) status(c *gin.Context) {
	snap, err := h.games.Status(c.Request.Context(), c.Param("id"), c.Query("player"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) story(c *gin.Context) {
	numbered, _ := strconv.ParseBool(c.DefaultQuery("numbered", "false"))
	text, err := h.games.ReadStory(c.Request.Context(), c.Param("id"), c.Query("player"), numbered)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *handler) publishedStories(c *gin.Context) {
	stories, err := h.games.PublishedStories(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]publishedStory, 0, len(stories))
	for _, s := range stories {
		out = append(out, publishedStory{Owner: s.Owner, Text: s.Text, PublishedAt: s.PublishedAt.Format(time.RFC3339)})
	}
	c.JSON(http.StatusOK, gin.H{"stories": out})
}

func (h *handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err))
		return false
	}
	return true
}

// fail writes err as {code, message}, localizing the message for the
// caller's Accept-Language when the error carries template metadata.
func (h *handler) fail(c *gin.Context, err error) {
	domainErr, ok := apperrors.As(err)
	if !ok {
		if errors.Is(err, storage.ErrNotFound) {
			domainErr = apperrors.New(apperrors.CodeNotFound, err.Error())
		} else {
			h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			domainErr = apperrors.Wrap(apperrors.CodeUnknown, "internal error", err)
		}
	}
	c.AbortWithStatusJSON(domainErr.Code.HTTPStatus(), errorResponse{
		Code:    domainErr.Code,
		Message: localize(c.GetHeader("Accept-Language"), domainErr),
	})
}

func localize(acceptLanguage string, err *apperrors.Error) string {
	catalog := i18n.Negotiate(acceptLanguage)
	if catalog.Locale() == i18n.BaseLocale || len(err.Metadata) == 0 {
		if strings.TrimSpace(err.Message) != "" {
			return err.Message
		}
	}
	return catalog.Format(string(err.Code), err.Metadata)
}

func (h *handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()))
	}
}
