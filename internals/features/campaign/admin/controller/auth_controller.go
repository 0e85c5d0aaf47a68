package controller

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"ilika_backend/internals/configs"
	"ilika_backend/internals/features/campaign/admin/dto"
	helper "ilika_backend/internals/helpers"
)

var validate = validator.New()

const tokenTTL = 24 * time.Hour

// AuthController issues admin JWTs. Credentials come from the
// environment: ADMIN_LOGIN_EMAIL plus a bcrypt ADMIN_PASSWORD_HASH.
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// Login handles POST /api/admin/login.
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	adminEmail := configs.GetEnv("ADMIN_LOGIN_EMAIL", "")
	passwordHash := configs.GetEnv("ADMIN_PASSWORD_HASH", "")
	if adminEmail == "" || passwordHash == "" || configs.JWTSecret == "" {
		log.Println("[AUTH] admin login attempted but credentials are not configured")
		return helper.Error(c, fiber.StatusInternalServerError, "Admin login not configured")
	}

	if req.Email != adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  req.Email,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "admin_token",
		Value:    token,
		Expires:  now.Add(tokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})

	return helper.Success(c, "Logged in", dto.LoginResponse{
		Token: token,
		Email: req.Email,
		Role:  "admin",
	})
}
