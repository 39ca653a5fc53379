package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"simplog/mailer"
	"simplog/middleware"
	"simplog/models"
	"simplog/store"
)

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email"`
	Code            string `json:"code"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func generateToken(userID primitive.ObjectID) (string, error) {
	claims := &middleware.Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func validateRegisterInput(req registerRequest) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = "Username must not be empty"
	}
	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "Password must not be empty"
	}
	if strings.TrimSpace(req.ConfirmPassword) == "" {
		fields["confirmPassword"] = "ConfirmPassword must not be empty"
	} else if req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = "Password must match"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "Email must not be empty"
	} else if !strings.Contains(req.Email, "@") {
		fields["email"] = "Email must be a valid email address"
	}
	return fields
}

func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if fields := validateRegisterInput(req); len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "User register input error",
			"error":   fields,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := deps.Stores.Users.FindByUsername(ctx, req.Username); err == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Username already taken",
			"error":   gin.H{"username": "Username already taken"},
		})
		return
	} else if err != store.ErrNotFound {
		fail(c, err)
		return
	}

	if _, err := deps.Stores.Users.FindByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Email already registered",
			"error":   gin.H{"email": "Email already registered"},
		})
		return
	} else if err != store.ErrNotFound {
		fail(c, err)
		return
	}

	code, err := deps.Stores.VerifyCodes.FindByEmail(ctx, req.Email)
	if err == store.ErrNotFound || (err == nil && code.Value != req.Code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Verification code expired or wrong, request a new one",
		})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, err)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		UUID:      uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      "basic",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := deps.Stores.Users.Insert(ctx, user); err != nil {
		fail(c, err)
		return
	}

	token, err := generateToken(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"token": token})
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = "Username must not be empty"
	}
	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "Password must not be empty"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "User login input error",
			"error":   fields,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := deps.Stores.Users.FindByUsername(ctx, req.Username)
	if err == store.ErrNotFound {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "User login input error",
			"error":   gin.H{"general": "User does not exist"},
		})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "User login input error",
			"error":   gin.H{"general": "Wrong password"},
		})
		return
	}

	token, err := generateToken(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"token": token})
}

type sendMailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendVerifyMail emails a registration code. The code expires via the
// 60s TTL index on the verifycodes collection.
func SendVerifyMail(c *gin.Context) {
	var req sendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := deps.Stores.Users.FindByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Email already registered",
		})
		return
	} else if err != store.ErrNotFound {
		fail(c, err)
		return
	}

	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		fail(c, err)
		return
	}
	code := hex.EncodeToString(buf)

	html := "You are registering a new simplog account. Your verification code is: " +
		code + ". Enter it promptly; it expires shortly. If this was not you, ignore this mail."

	if err := deps.Mailer.Send(req.Email, "simplog account registration", html); err != nil {
		log.Printf("[SendVerifyMail] %v", err)
		if mailer.IsRejected(err) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "This email address does not exist, check it and retry",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to send verification mail",
		})
		return
	}

	v := &models.VerifyCode{
		Value:     code,
		Email:     req.Email,
		Operation: models.CodeTypeRegister,
		CreatedAt: time.Now(),
	}
	if err := deps.Stores.VerifyCodes.Insert(ctx, v); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Mail sent"})
}
