package authController

import (
	"crypto/hmac"
	"crypto/sha256"
	"edupay/config"
	"edupay/database"
	"edupay/middleware"
	"edupay/models"
	authValidator "edupay/validators/auth"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// loginIdentity is the variant type over supported login methods: exactly
// one constructor per method, no boolean flag combinations.
type loginIdentity interface {
	method() string
}

type passwordIdentity struct {
	Email    string
	Password string
}

type telegramIdentity struct {
	TelegramID int64
	Name       string
}

type vkIdentity struct {
	VkID  int64
	Name  string
	Email string
}

func (passwordIdentity) method() string { return models.LoginMethodPassword }
func (telegramIdentity) method() string { return models.LoginMethodTelegram }
func (vkIdentity) method() string       { return models.LoginMethodVK }

// authenticate resolves an identity to a user record. Password identities
// must match an existing account; external identities are created on first
// login.
func authenticate(db *gorm.DB, identity loginIdentity) (*models.User, error) {
	switch id := identity.(type) {
	case passwordIdentity:
		var user models.User
		if err := db.Where("email = ? AND login_method = ? AND is_deleted = ?", id.Email, models.LoginMethodPassword, false).First(&user).Error; err != nil {
			return nil, err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(id.Password)); err != nil {
			return nil, err
		}
		return &user, nil

	case telegramIdentity:
		var user models.User
		err := db.Where("telegram_id = ? AND is_deleted = ?", id.TelegramID, false).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			tgID := id.TelegramID
			user = models.User{
				Name:        id.Name,
				LoginMethod: models.LoginMethodTelegram,
				TelegramID:  &tgID,
			}
			if err := db.Create(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		if err != nil {
			return nil, err
		}
		return &user, nil

	case vkIdentity:
		var user models.User
		err := db.Where("vk_id = ? AND is_deleted = ?", id.VkID, false).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			vkID := id.VkID
			user = models.User{
				Name:        id.Name,
				Email:       id.Email,
				LoginMethod: models.LoginMethodVK,
				VkID:        &vkID,
			}
			if err := db.Create(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	}

	return nil, gorm.ErrRecordNotFound
}

func respondWithToken(c *fiber.Ctx, user *models.User) error {
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	database.Database.Db.Model(user).UpdateColumn("last_login", time.Now())

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged in successfully!", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Signup registers a password-based account
func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:        reqData.Name,
		Email:       reqData.Email,
		LoginMethod: models.LoginMethodPassword,
		Password:    string(hashedPassword),
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to sign up user!", nil)
	}

	newUser.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

// Login authenticates with email and password
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := authenticate(database.Database.Db, passwordIdentity{
		Email:    reqData.Email,
		Password: reqData.Password,
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	return respondWithToken(c, user)
}

// TelegramLogin authenticates a Telegram login widget payload
func TelegramLogin(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTelegramLogin").(*authValidator.TelegramLoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !verifyTelegramHash(reqData) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Telegram signature verification failed!", nil)
	}

	// Stale widget payloads are replayable; reject anything older than a day.
	if time.Since(time.Unix(reqData.AuthDate, 0)) > 24*time.Hour {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Telegram login payload expired!", nil)
	}

	name := strings.TrimSpace(reqData.FirstName + " " + reqData.LastName)
	if name == "" {
		name = reqData.Username
	}

	user, err := authenticate(database.Database.Db, telegramIdentity{
		TelegramID: reqData.ID,
		Name:       name,
	})
	if err != nil {
		log.Printf("Error authenticating Telegram user %d: %v", reqData.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	return respondWithToken(c, user)
}

// VKLogin authenticates VK launch params
func VKLogin(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVKLogin").(*authValidator.VKLoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !verifyVKSign(reqData.Params, reqData.Sign) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "VK signature verification failed!", nil)
	}

	// The identity must come out of the signed string; an unsigned body
	// field would let one valid signature log in as anybody.
	vkUserID, err := vkUserIDFromParams(reqData.Params)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid VK launch params!", nil)
	}

	user, err := authenticate(database.Database.Db, vkIdentity{
		VkID:  vkUserID,
		Name:  reqData.Name,
		Email: reqData.Email,
	})
	if err != nil {
		log.Printf("Error authenticating VK user %d: %v", vkUserID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	return respondWithToken(c, user)
}

// verifyTelegramHash checks the login widget HMAC: the data-check string is
// all received fields except hash, sorted, joined with newlines; the key is
// SHA256 of the bot token.
func verifyTelegramHash(reqData *authValidator.TelegramLoginRequest) bool {
	if config.AppConfig.TelegramBotToken == "" || reqData.Hash == "" {
		return false
	}

	pairs := []string{
		"auth_date=" + strconv.FormatInt(reqData.AuthDate, 10),
		"id=" + strconv.FormatInt(reqData.ID, 10),
	}
	if reqData.FirstName != "" {
		pairs = append(pairs, "first_name="+reqData.FirstName)
	}
	if reqData.LastName != "" {
		pairs = append(pairs, "last_name="+reqData.LastName)
	}
	if reqData.Username != "" {
		pairs = append(pairs, "username="+reqData.Username)
	}
	if reqData.PhotoURL != "" {
		pairs = append(pairs, "photo_url="+reqData.PhotoURL)
	}
	sort.Strings(pairs)

	secret := sha256.Sum256([]byte(config.AppConfig.TelegramBotToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(reqData.Hash))
}

// vkUserIDFromParams extracts vk_user_id from the launch params string.
// Only call it on params whose signature has been verified.
func vkUserIDFromParams(params string) (int64, error) {
	values, err := url.ParseQuery(params)
	if err != nil {
		return 0, err
	}

	raw := values.Get("vk_user_id")
	if raw == "" {
		return 0, fmt.Errorf("vk_user_id missing from launch params")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// verifyVKSign checks the VK launch params signature: base64url HMAC-SHA256
// of the sorted vk_* query string keyed with the app secret.
func verifyVKSign(params, sign string) bool {
	if config.AppConfig.VKSecret == "" || sign == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(config.AppConfig.VKSecret))
	mac.Write([]byte(params))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sign))
}
