package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const minPasswordLength = 8

// dummyHash is a pre-computed bcrypt hash used when a login username isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// login verifies username/password and returns the user's auth token.
// POST /api/login (public, no auth required).
func (h *Handler) login(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, lookupErr := h.store.UserByUsername(c, body.Username)

	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil && !errors.Is(lookupErr, store.ErrNotFound) {
		writeError(c, "login", lookupErr)
		return
	}
	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// register creates a user with a default profile and returns its auth token.
// POST /api/register (public).
func (h *Handler) register(c *gin.Context) {
	var body credentialsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(body.Email)
	if body.Username == "" {
		apiError(c, http.StatusBadRequest, "username is required")
		return
	}
	if len(body.Password) < minPasswordLength {
		apiError(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(c, "register", err)
		return
	}

	u, err := h.store.CreateUser(c, model.User{
		Username:  body.Username,
		Email:     body.Email,
		Password:  string(hash),
		AuthToken: uuid.New().String(),
	})
	if errors.Is(err, store.ErrConflict) {
		apiError(c, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		writeError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		id, err := h.store.UserIDByToken(c, token)
		if errors.Is(err, store.ErrNotFound) {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if err != nil {
			writeError(c, "authMiddleware", err)
			c.Abort()
			return
		}

		c.Set("user_id", id)
		c.Next()
	}
}
