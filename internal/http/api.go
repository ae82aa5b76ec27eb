package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
	"recipe-api/internal/service"
)

const userContextKey = "authUser"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	recipes service.RecipeService
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, recipes service.RecipeService, logger *logrus.Logger) *Handler {
	return &Handler{
		users:   users,
		recipes: recipes,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		user := api.Group("/user")
		{
			user.POST("/create", h.createUser)
			user.POST("/token", h.createToken)
			user.GET("/me", h.requireAuth(), h.me)
			user.PATCH("/me", h.requireAuth(), h.updateMe)
		}

		recipe := api.Group("/recipe", h.requireAuth())
		{
			recipe.GET("/tags", h.listTags)
			recipe.POST("/tags", h.createTag)
			recipe.PATCH("/tags/:id", h.updateTag)
			recipe.DELETE("/tags/:id", h.deleteTag)

			recipe.GET("/ingredients", h.listIngredients)
			recipe.POST("/ingredients", h.createIngredient)
			recipe.PATCH("/ingredients/:id", h.updateIngredient)
			recipe.DELETE("/ingredients/:id", h.deleteIngredient)

			recipe.GET("/recipes", h.listRecipes)
			recipe.POST("/recipes", h.createRecipe)
			recipe.GET("/recipes/:id", h.getRecipe)
			recipe.PUT("/recipes/:id", h.putRecipe)
			recipe.PATCH("/recipes/:id", h.patchRecipe)
			recipe.DELETE("/recipes/:id", h.deleteRecipe)
			recipe.POST("/recipes/:id/image", h.uploadRecipeImage)
			recipe.GET("/recipes/:id/image", h.recipeImageURL)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireAuth resolves the Authorization header to a user and aborts with 401
// when that fails. Both "Token <key>" and "Bearer <key>" schemes are accepted.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearerToken(c.GetHeader("Authorization"))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		user, err := h.users.CurrentUser(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			h.logger.WithError(err).Error("resolve auth token")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "token" && scheme != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authUser returns the user resolved by requireAuth.
func authUser(c *gin.Context) *domain.User {
	user, _ := c.MustGet(userContextKey).(*domain.User)
	return user
}

// writeError maps service and repository sentinels to HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrTitleRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) createToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(authUser(c)))
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), authUser(c).ID, service.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}
