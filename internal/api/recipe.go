package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipes-api/internal/middleware"
	"github.com/pageza/recipes-api/internal/model"
	"github.com/pageza/recipes-api/internal/store"
)

// RecipeHandler serves the recipes resource from a RecipeStore
type RecipeHandler struct {
	store store.RecipeStore
	log   logrus.FieldLogger
}

func NewRecipeHandler(s store.RecipeStore, log logrus.FieldLogger) *RecipeHandler {
	return &RecipeHandler{
		store: s,
		log:   log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router gin.IRouter) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.store.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var in model.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, &store.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	recipe, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{"id": recipe.ID, "name": recipe.Name}).Debug("created recipe")
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")

	var in model.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		// an unknown id is reported as such even when the body is unusable
		if _, getErr := h.store.Get(c.Request.Context(), id); getErr != nil {
			h.respondError(c, getErr)
			return
		}
		h.respondError(c, &store.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	if err := h.store.Update(c.Request.Context(), id, in); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.WithField("id", id).Debug("updated recipe")
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.WithField("id", id).Debug("deleted recipe")
	c.Status(http.StatusNoContent)
}

// respondError maps store errors onto client statuses. Unclassified errors
// become a 500 without leaking their message.
func (h *RecipeHandler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *store.ValidationError
	var nf *store.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: verr.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: nf.Error()})
	default:
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Error: "Internal Server Error"})
	}
}
