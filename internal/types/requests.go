package types

// RegisterRequest is the body of POST /users
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=128"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

// LoginRequest is the body of POST /auth/token/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest is the body of POST /users/set_password
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type RecipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// CreateRecipeRequest is the body of POST /recipes. Image is a base64 data URI.
type CreateRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients"`
	Tags        []uint                  `json:"tags"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	CookingTime int                     `json:"cooking_time"`
}

// UpdateRecipeRequest is the body of PATCH /recipes/:id. Nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Ingredients *[]RecipeIngredientInput `json:"ingredients"`
	Tags        *[]uint                  `json:"tags"`
	Image       *string                  `json:"image"`
	Name        *string                  `json:"name"`
	Text        *string                  `json:"text"`
	CookingTime *int                     `json:"cooking_time"`
}
