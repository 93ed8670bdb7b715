package transport

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/service"
)

type (
	MessageResp struct {
		Message string `json:"message"`
	}

	TokenResp struct {
		Token string `json:"token"`
	}

	DocumentResp struct {
		Message  string           `json:"message,omitempty"`
		Document *models.Document `json:"document"`
	}

	DocumentsResp struct {
		Documents []models.Document `json:"documents"`
	}

	SharableLinkResp struct {
		SharableLink string `json:"sharableLink"`
	}

	PublicDocumentResp struct {
		Document *models.PublicDocument `json:"document"`
	}

	ProfileResp struct {
		Success        bool              `json:"success"`
		Profile        *models.Profile   `json:"profile"`
		Documents      []models.Document `json:"documents"`
		TotalDocuments int               `json:"totalDocuments"`
	}

	ProfileUpdateResp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Profile *models.Profile `json:"profile"`
	}

	VisibilityProfile struct {
		Username      string `json:"username"`
		PublicProfile bool   `json:"publicProfile"`
	}

	VisibilityResp struct {
		Success      bool              `json:"success"`
		Message      string            `json:"message"`
		Profile      VisibilityProfile `json:"profile"`
		SharableLink *string           `json:"sharableLink"`
	}

	PublicProfileResp struct {
		Success        bool                    `json:"success"`
		Profile        *models.PublicProfile   `json:"profile"`
		Documents      []models.PublicDocument `json:"documents"`
		TotalDocuments int                     `json:"totalDocuments"`
	}

	HTTPServer struct {
		echo     *echo.Echo
		auth     *service.Auth
		content  *service.Content
		sharing  *service.Sharing
		profiles *service.Profiles
		logger   *zap.SugaredLogger
	}
)

var (
	Module = fx.Provide(
		NewHTTPServer,
	)
)

// New builds the echo application with every route registered. It does not
// listen; NewHTTPServer binds it to the fx lifecycle.
func New(
	cfg *config.Config,
	auth *service.Auth,
	content *service.Content,
	sharing *service.Sharing,
	profiles *service.Profiles,
	logger *zap.SugaredLogger,
) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	instance := HTTPServer{
		echo:     e,
		auth:     auth,
		content:  content,
		sharing:  sharing,
		profiles: profiles,
		logger:   logger,
	}
	e.HTTPErrorHandler = instance.errorHandler

	e.Use(middleware.Recover())
	e.Use(accessLog(logger))
	e.Use(MetricsMiddleware)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Origins(),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.LogLevel == "debug" {
		e.Use(bodyDump(logger))
	}

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	authG := api.Group("/auth")
	authG.POST("/signup", instance.Signup)
	authG.POST("/signin", instance.Signin)

	contentG := api.Group("/content", instance.AuthMiddleware)
	contentG.GET("", instance.ContentList)
	contentG.POST("", instance.ContentCreate)
	contentG.GET("/:id", instance.ContentGet)
	contentG.PATCH("/:id", instance.ContentUpdate)
	contentG.DELETE("/:id", instance.ContentDelete)

	brainG := api.Group("/brain", instance.AuthMiddleware)
	brainG.PUT("/share/:id", instance.BrainShare)
	brainG.PUT("/unshare/:id", instance.BrainUnshare)
	brainG.GET("/:uuid", instance.BrainResolve)

	profileG := api.Group("/profile")
	profileG.GET("", instance.ProfileGet, instance.AuthMiddleware)
	profileG.PUT("", instance.ProfileUpdate, instance.AuthMiddleware)
	profileG.PUT("/visibility", instance.ProfileVisibility, instance.AuthMiddleware)
	profileG.GET("/:username", instance.ProfilePublic)

	return &instance
}

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	auth *service.Auth,
	content *service.Content,
	sharing *service.Sharing,
	profiles *service.Profiles,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := New(cfg, auth, content, sharing, profiles, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				logger.Infow("Starting HTTP server.", "listen", listen)
				if err := instance.echo.Start(listen); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.echo.Shutdown(ctx)
		},
	})

	return instance
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *HTTPServer) Signup(c echo.Context) error {
	req := models.Credentials{}
	if err := c.Bind(&req); err != nil {
		return signupErrors.invalidBody()
	}
	if err := s.auth.Signup(c.Request().Context(), req); err != nil {
		return signupErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "Signup successful"})
}

func (s *HTTPServer) Signin(c echo.Context) error {
	req := models.Credentials{}
	if err := c.Bind(&req); err != nil {
		return signinErrors.invalidBody()
	}
	token, err := s.auth.Signin(c.Request().Context(), req)
	if err != nil {
		return signinErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, TokenResp{Token: token})
}

func (s *HTTPServer) ContentList(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	docs, err := s.content.List(c.Request().Context(), userID, c.QueryParam("tag"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DocumentsResp{Documents: docs})
}

func (s *HTTPServer) ContentCreate(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.DocumentInput{}
	if err := c.Bind(&req); err != nil {
		return contentErrors.invalidBody()
	}
	doc, err := s.content.Create(c.Request().Context(), userID, req)
	if err != nil {
		return contentErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, DocumentResp{Message: "Document added", Document: doc})
}

func (s *HTTPServer) ContentGet(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	doc, err := s.content.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return contentErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, DocumentResp{Document: doc})
}

func (s *HTTPServer) ContentUpdate(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.DocumentPatch{}
	if err := c.Bind(&req); err != nil {
		return contentErrors.invalidBody()
	}
	doc, err := s.content.Update(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return contentErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, DocumentResp{Message: "Document updated successfully", Document: doc})
}

func (s *HTTPServer) ContentDelete(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	doc, err := s.content.Delete(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return contentErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, DocumentResp{Message: "Deleted", Document: doc})
}

func (s *HTTPServer) BrainShare(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	link, err := s.sharing.Share(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return contentErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, SharableLinkResp{SharableLink: link})
}

func (s *HTTPServer) BrainUnshare(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.sharing.Unshare(c.Request().Context(), userID, c.Param("id")); err != nil {
		return contentErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "Unshared successfully"})
}

func (s *HTTPServer) BrainResolve(c echo.Context) error {
	doc, err := s.sharing.Resolve(c.Request().Context(), c.Param("uuid"))
	if err != nil {
		return brainErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, PublicDocumentResp{Document: doc})
}

func (s *HTTPServer) ProfileGet(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	profile, docs, err := s.profiles.GetOwn(c.Request().Context(), userID)
	if err != nil {
		return profileErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, ProfileResp{
		Success:        true,
		Profile:        profile,
		Documents:      docs,
		TotalDocuments: len(docs),
	})
}

func (s *HTTPServer) ProfileUpdate(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.ProfilePatch{}
	if err := c.Bind(&req); err != nil {
		return profileErrors.invalidBody()
	}
	profile, err := s.profiles.UpdateOwn(c.Request().Context(), userID, req)
	if err != nil {
		return profileErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, ProfileUpdateResp{
		Success: true,
		Message: "Profile updated successfully",
		Profile: profile,
	})
}

func (s *HTTPServer) ProfileVisibility(c echo.Context) error {
	userID, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.Visibility{}
	if err := c.Bind(&req); err != nil {
		return profileErrors.invalidBody()
	}
	profile, link, err := s.profiles.SetVisibility(c.Request().Context(), userID, req)
	if err != nil {
		return profileErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, VisibilityResp{
		Success: true,
		Message: "Profile visibility updated",
		Profile: VisibilityProfile{
			Username:      profile.Username,
			PublicProfile: profile.PublicProfile,
		},
		SharableLink: link,
	})
}

func (s *HTTPServer) ProfilePublic(c echo.Context) error {
	profile, docs, err := s.profiles.GetPublic(c.Request().Context(), c.Param("username"))
	if err != nil {
		return publicProfileErrors.wrap(err)
	}
	return c.JSON(http.StatusOK, PublicProfileResp{
		Success:        true,
		Profile:        profile,
		Documents:      docs,
		TotalDocuments: len(docs),
	})
}
