package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/store"
)

// CreateCustomer inserts a new customer
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, type, phone, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := s.db.GetContext(ctx, &customer.ID, query,
		customer.Name, customer.Type, customer.Phone, customer.Notes)
	if isUniqueViolation(err) {
		return fmt.Errorf("customer %q: %w", customer.Name, store.ErrConflict)
	}
	return err
}

// GetCustomer retrieves a customer by ID
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomers retrieves all customers ordered by name
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers, "SELECT * FROM customers ORDER BY name")
	return customers, err
}

// UpdateCustomer updates a customer
func (s *Store) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers SET name = $1, type = $2, phone = $3, notes = $4 WHERE id = $5`,
		customer.Name, customer.Type, customer.Phone, customer.Notes, customer.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("customer %q: %w", customer.Name, store.ErrConflict)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("customer %d: %w", customer.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteCustomer deletes a customer unless orders reference it
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	var hasOrders bool
	err := s.db.GetContext(ctx, &hasOrders,
		"SELECT EXISTS(SELECT 1 FROM orders WHERE customer_id = $1)", id)
	if err != nil {
		return err
	}
	if hasOrders {
		return fmt.Errorf("customer %d has orders: %w", id, store.ErrConflict)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("customer %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// CreateRecipe inserts a recipe and its ingredient lines in one transaction
func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO recipes (name, description, cookie_size, dough_weight_per_cookie_g, yield_cookies, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err = tx.GetContext(ctx, &recipe.ID, query,
		recipe.Name, recipe.Description, recipe.CookieSize,
		recipe.DoughWeightPerCookieG, recipe.YieldCookies, recipe.Notes)
	if isUniqueViolation(err) {
		return fmt.Errorf("recipe %q: %w", recipe.Name, store.ErrConflict)
	}
	if err != nil {
		return err
	}

	for i := range ingredients {
		ingredients[i].RecipeID = recipe.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity)
			VALUES ($1, $2, $3)`,
			ingredients[i].RecipeID, ingredients[i].IngredientID, ingredients[i].Quantity)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("recipe ingredient %d: %w", ingredients[i].IngredientID, store.ErrNotFound)
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRecipe retrieves a recipe with its ingredient lines
func (s *Store) GetRecipe(ctx context.Context, id int64) (*models.Recipe, []models.RecipeIngredient, error) {
	var recipe models.Recipe
	err := s.db.GetContext(ctx, &recipe, "SELECT * FROM recipes WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("recipe %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	var ingredients []models.RecipeIngredient
	err = s.db.SelectContext(ctx, &ingredients,
		"SELECT * FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY ingredient_id", id)
	if err != nil {
		return nil, nil, err
	}
	return &recipe, ingredients, nil
}

// ListRecipes retrieves all recipes ordered by name
func (s *Store) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.SelectContext(ctx, &recipes, "SELECT * FROM recipes ORDER BY name")
	return recipes, err
}

// UpdateRecipe replaces a recipe and its ingredient lines in one transaction
func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recipes
		SET name = $1, description = $2, cookie_size = $3, dough_weight_per_cookie_g = $4,
		    yield_cookies = $5, notes = $6
		WHERE id = $7`,
		recipe.Name, recipe.Description, recipe.CookieSize,
		recipe.DoughWeightPerCookieG, recipe.YieldCookies, recipe.Notes, recipe.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("recipe %q: %w", recipe.Name, store.ErrConflict)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recipe %d: %w", recipe.ID, store.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM recipe_ingredients WHERE recipe_id = $1", recipe.ID); err != nil {
		return err
	}
	for i := range ingredients {
		ingredients[i].RecipeID = recipe.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity)
			VALUES ($1, $2, $3)`,
			ingredients[i].RecipeID, ingredients[i].IngredientID, ingredients[i].Quantity)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteRecipe deletes a recipe and its ingredient lines
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recipe %d: %w", id, store.ErrNotFound)
	}
	return nil
}
