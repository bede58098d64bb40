package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

// --- Purchases ---

// createPurchase handles purchase creation
func (h *Handler) createPurchase(c *gin.Context) {
	var purchase models.Purchase
	if err := c.ShouldBindJSON(&purchase); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.inventory.RecordPurchase(c.Request.Context(), &purchase); err != nil {
		writeError(c, err, "Failed to record purchase")
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// listPurchases handles listing all purchases
func (h *Handler) listPurchases(c *gin.Context) {
	purchases, err := h.inventory.ListPurchases(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to list purchases")
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// getPurchase handles get purchase by ID
func (h *Handler) getPurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	purchase, err := h.inventory.GetPurchase(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Purchase not found")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// updatePurchase handles purchase updates
func (h *Handler) updatePurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var purchase models.Purchase
	if err := c.ShouldBindJSON(&purchase); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	purchase.ID = id

	if err := h.inventory.UpdatePurchase(c.Request.Context(), &purchase); err != nil {
		writeError(c, err, "Failed to update purchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// deletePurchase handles purchase deletion
func (h *Handler) deletePurchase(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.inventory.DeletePurchase(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete purchase")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Customers ---

// createCustomer handles customer creation
func (h *Handler) createCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.inventory.CreateCustomer(c.Request.Context(), &customer); err != nil {
		writeError(c, err, "Failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// listCustomers handles listing all customers
func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.inventory.ListCustomers(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// getCustomer handles get customer by ID
func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	customer, err := h.inventory.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// updateCustomer handles customer updates
func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	customer.ID = id

	if err := h.inventory.UpdateCustomer(c.Request.Context(), &customer); err != nil {
		writeError(c, err, "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// deleteCustomer handles customer deletion
func (h *Handler) deleteCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteCustomer(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Recipes ---

type recipeRequest struct {
	models.Recipe
	Ingredients []models.RecipeIngredient `json:"ingredients"`
}

// createRecipe handles recipe creation with its ingredient lines
func (h *Handler) createRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.inventory.CreateRecipe(c.Request.Context(), &req.Recipe, req.Ingredients); err != nil {
		writeError(c, err, "Failed to create recipe")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"recipe":      req.Recipe,
		"ingredients": req.Ingredients,
	})
}

// listRecipes handles listing all recipes
func (h *Handler) listRecipes(c *gin.Context) {
	recipes, err := h.inventory.ListRecipes(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to list recipes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// getRecipe handles get recipe by ID
func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	recipe, ingredients, err := h.inventory.GetRecipe(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe":      recipe,
		"ingredients": ingredients,
	})
}

// updateRecipe handles recipe updates, replacing the ingredient lines
func (h *Handler) updateRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	req.Recipe.ID = id

	if err := h.inventory.UpdateRecipe(c.Request.Context(), &req.Recipe, req.Ingredients); err != nil {
		writeError(c, err, "Failed to update recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe":      req.Recipe,
		"ingredients": req.Ingredients,
	})
}

// deleteRecipe handles recipe deletion
func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteRecipe(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete recipe")
		return
	}
	c.Status(http.StatusNoContent)
}
