package paymentController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"edupay/config"
	"edupay/database"
	"edupay/middleware"
	"edupay/models"
	"edupay/utils"
	paymentValidator "edupay/validators/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeGateway stands in for the payment provider. It counts creation calls
// so tests can assert that rejected checkouts never reach the network.
type fakeGateway struct {
	mu            sync.Mutex
	creates       int
	lastCreate    utils.CreateGatewayPaymentRequest
	lastIdemKey   string
	rejectWith    string // when set, POST /payments fails with this description
	paymentStatus string // status GET /payments/:id reports
}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPost && r.URL.Path == "/payments" {
		f.mu.Lock()
		f.creates++
		n := f.creates
		json.NewDecoder(r.Body).Decode(&f.lastCreate)
		f.lastIdemKey = r.Header.Get("Idempotence-Key")
		reject := f.rejectWith
		amount := f.lastCreate.Amount
		f.mu.Unlock()

		if reject != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(utils.GatewayError{Type: "error", Code: "invalid_request", Description: reject})
			return
		}

		json.NewEncoder(w).Encode(utils.GatewayPayment{
			ID:     fmt.Sprintf("gw-%d", n),
			Status: utils.GatewayStatusPending,
			Amount: amount,
			Confirmation: &utils.GatewayConfirmation{
				Type:            "redirect",
				ConfirmationURL: fmt.Sprintf("https://gateway.test/confirm/%d", n),
			},
		})
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/payments/") {
		f.mu.Lock()
		status := f.paymentStatus
		f.mu.Unlock()

		json.NewEncoder(w).Encode(utils.GatewayPayment{
			ID:     strings.TrimPrefix(r.URL.Path, "/payments/"),
			Status: status,
			Paid:   status == utils.GatewayStatusSucceeded,
			Amount: utils.NewGatewayAmount(0),
		})
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (f *fakeGateway) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func setupCheckout(t *testing.T) (*fiber.App, *gorm.DB, *fakeGateway) {
	t.Helper()

	fake := &fakeGateway{paymentStatus: utils.GatewayStatusPending}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	config.AppConfig = &config.Config{
		JWTKey:           "test-secret",
		GatewayApiURL:    server.URL,
		GatewayShopID:    "test-shop",
		GatewaySecret:    "test-secret-key",
		PaymentReturnURL: "https://edupay.ru/payment/success",
		ReferralTTLHours: 72,
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.PromoCode{},
		&models.UserPromoCode{},
		&models.Promotion{},
		&models.Payment{},
		&models.ReferralConversion{},
	))
	database.Database = database.DbInstance{Db: db}

	utils.ReferralVisits = utils.NewVisitStore()

	app := fiber.New()
	app.Post("/api/payments/create", paymentValidator.CreatePayment(), middleware.OptionalJWTMiddleware, CreatePayment)
	app.Post("/api/payments/webhook", HandleWebhook)
	app.Get("/api/payments/:gatewayId/status", GetPaymentStatus)
	return app, db, fake
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	parsed := map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&parsed)
	return resp.StatusCode, parsed
}

func seedCourse(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()
	course := models.Course{Title: "Go с нуля", PriceAmount: 169900, Status: "ACTIVE", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestCreatePaymentRequiresContact(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      course.ID,
		"paymentMethod": "bank_card",
		"amount":        169900,
		"type":          "course",
		"receipt":       fiber.Map{},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Укажите email или телефон для чека", body["error"])
	assert.Equal(t, 0, fake.createCount())
}

func TestCreatePaymentCourseWithPromo(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)

	promo := models.PromoCode{Code: "TEA15", DiscountPercent: 15, IsActive: true}
	require.NoError(t, db.Create(&promo).Error)

	user := models.User{Name: "Ivan", Email: "ivan@example.com"}
	require.NoError(t, db.Create(&user).Error)
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      course.ID,
		"paymentMethod": "bank_card",
		"amount":        144415,
		"type":          "course",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
		"promocode":     fiber.Map{"id": promo.ID, "code": "TEA15", "discountPercent": 15},
	}, map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.Equal(t, "https://gateway.test/confirm/1", body["confirmationUrl"])

	assert.Equal(t, 1, fake.createCount())
	assert.Equal(t, "1444.15", fake.lastCreate.Amount.Value)
	assert.Equal(t, "RUB", fake.lastCreate.Amount.Currency)
	assert.NotEmpty(t, fake.lastIdemKey)
	require.Len(t, fake.lastCreate.Receipt.Items, 1)
	assert.Equal(t, "Go с нуля", fake.lastCreate.Receipt.Items[0].Description)

	var payment models.Payment
	require.NoError(t, db.Where("gateway_id = ?", "gw-1").First(&payment).Error)
	assert.Equal(t, int64(169900), payment.BaseAmount)
	assert.Equal(t, int64(144415), payment.FinalAmount)
	assert.Equal(t, "TEA15", payment.PromoCode)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	require.NotNil(t, payment.UserID)
	assert.Equal(t, user.ID, *payment.UserID)
}

func TestCreatePaymentAmountMismatch(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)

	promo := models.PromoCode{Code: "TEA15", DiscountPercent: 15, IsActive: true}
	require.NoError(t, db.Create(&promo).Error)

	// Client claims a bigger discount than the stored code gives
	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      course.ID,
		"paymentMethod": "bank_card",
		"amount":        100000,
		"type":          "course",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
		"promocode":     fiber.Map{"id": promo.ID, "code": "TEA15", "discountPercent": 40},
	}, nil)

	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "1444.15")
	assert.Equal(t, 0, fake.createCount())
}

func TestCreatePaymentUnknownCourse(t *testing.T) {
	app, _, fake := setupCheckout(t)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      999,
		"paymentMethod": "bank_card",
		"amount":        169900,
		"type":          "course",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
	}, nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Курс не найден", body["error"])
	assert.Equal(t, 0, fake.createCount())
}

func TestCreatePaymentInactivePromoRejected(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)

	promo := models.PromoCode{Code: "LATE", DiscountPercent: 15, IsActive: true}
	require.NoError(t, db.Create(&promo).Error)
	require.NoError(t, db.Model(&promo).UpdateColumn("is_active", false).Error)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      course.ID,
		"paymentMethod": "bank_card",
		"amount":        144415,
		"type":          "course",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
		"promocode":     fiber.Map{"id": promo.ID, "code": "LATE", "discountPercent": 15},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Промокод неактивен", body["error"])
	assert.Equal(t, 0, fake.createCount())
}

func TestCreatePaymentTopupRejectsPromo(t *testing.T) {
	app, db, fake := setupCheckout(t)

	promo := models.PromoCode{Code: "TEA15", DiscountPercent: 15, IsActive: true}
	require.NoError(t, db.Create(&promo).Error)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"paymentMethod": "bank_card",
		"amount":        50000,
		"type":          "topup",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
		"promocode":     fiber.Map{"id": promo.ID, "code": "TEA15", "discountPercent": 15},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Промокод нельзя применить к пополнению баланса", body["error"])
	assert.Equal(t, 0, fake.createCount())
}

func TestCreatePaymentPromotionSoldOut(t *testing.T) {
	app, db, fake := setupCheckout(t)

	promotion := models.Promotion{Key: "first_100", Title: "Первые 100", PriceAmount: 99900, TotalSlots: 100, UsedSlots: 100, IsActive: true}
	require.NoError(t, db.Create(&promotion).Error)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"paymentMethod": "bank_card",
		"amount":        99900,
		"type":          "first_100",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
	}, nil)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Все места по акции уже заняты", body["error"])
	assert.Equal(t, 0, fake.createCount())
}

func TestCreatePaymentPromotion(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)

	promotion := models.Promotion{Key: "first_100", Title: "Первые 100", PriceAmount: 99900, TotalSlots: 100, UsedSlots: 40, CourseID: &course.ID, IsActive: true}
	require.NoError(t, db.Create(&promotion).Error)

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"paymentMethod": "sbp",
		"amount":        99900,
		"type":          "first_100",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
	}, nil)

	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.Equal(t, 1, fake.createCount())

	var payment models.Payment
	require.NoError(t, db.Where("gateway_id = ?", "gw-1").First(&payment).Error)
	assert.Equal(t, "first_100", payment.CheckoutType)
	assert.Equal(t, int64(99900), payment.FinalAmount)
	require.NotNil(t, payment.CourseID)
	assert.Equal(t, course.ID, *payment.CourseID)
	assert.Nil(t, payment.UserID)
}

func TestCreatePaymentNormalizesPhoneAndTakesReferral(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)

	utils.ReferralVisits.Set("visitor-42", "FRIEND", 72*time.Hour)

	status, _ := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      course.ID,
		"paymentMethod": "bank_card",
		"amount":        169900,
		"type":          "course",
		"receipt":       fiber.Map{"phone": "8 (916) 123-45-67"},
	}, map[string]string{"X-Visitor-Token": "visitor-42"})

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, fake.createCount())
	assert.Equal(t, "+79161234567", fake.lastCreate.Receipt.Customer.Phone)

	var payment models.Payment
	require.NoError(t, db.Where("gateway_id = ?", "gw-1").First(&payment).Error)
	assert.Equal(t, "+79161234567", payment.Phone)
	assert.Equal(t, "FRIEND", payment.ReferralCode)

	// Attribution is clear-on-use
	_, found := utils.ReferralVisits.Get("visitor-42")
	assert.False(t, found)
}

func TestCreatePaymentGatewayRejection(t *testing.T) {
	app, db, fake := setupCheckout(t)
	course := seedCourse(t, db)
	fake.rejectWith = "Магазин не может принимать платежи"

	status, body := postJSON(t, app, "/api/payments/create", fiber.Map{
		"courseId":      course.ID,
		"paymentMethod": "bank_card",
		"amount":        169900,
		"type":          "course",
		"receipt":       fiber.Map{"email": "ivan@example.com"},
	}, nil)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Магазин не может принимать платежи", body["error"])

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func seedSucceededScenario(t *testing.T, db *gorm.DB) (models.User, models.Course, models.PromoCode, models.Promotion, models.Payment) {
	t.Helper()

	user := models.User{Name: "Ivan", Email: "ivan@example.com"}
	require.NoError(t, db.Create(&user).Error)
	course := seedCourse(t, db)

	promo := models.PromoCode{Code: "TEA15", DiscountPercent: 15, IsActive: true, MaxActivations: 100}
	require.NoError(t, db.Create(&promo).Error)
	require.NoError(t, db.Create(&models.UserPromoCode{UserID: user.ID, PromoCodeID: promo.ID, Source: "REFERRAL"}).Error)

	promotion := models.Promotion{Key: "first_100", PriceAmount: 99900, TotalSlots: 100, UsedSlots: 40, CourseID: &course.ID, IsActive: true}
	require.NoError(t, db.Create(&promotion).Error)

	payment := models.Payment{
		UserID:        &user.ID,
		CourseID:      &course.ID,
		CheckoutType:  "first_100",
		PaymentMethod: "bank_card",
		BaseAmount:    99900,
		FinalAmount:   84915,
		PromoCodeID:   &promo.ID,
		PromoCode:     promo.Code,
		Email:         user.Email,
		ReferralCode:  "FRIEND",
		Status:        models.PaymentStatusPending,
		GatewayID:     "gw-hook-1",
	}
	require.NoError(t, db.Create(&payment).Error)
	return user, course, promo, promotion, payment
}

func TestWebhookFinalizesPayment(t *testing.T) {
	app, db, fake := setupCheckout(t)
	fake.paymentStatus = utils.GatewayStatusSucceeded

	user, course, promo, promotion, payment := seedSucceededScenario(t, db)

	notification := fiber.Map{
		"event":  "payment.succeeded",
		"object": fiber.Map{"id": "gw-hook-1"},
	}

	status, _ := postJSON(t, app, "/api/payments/webhook", notification, nil)
	require.Equal(t, http.StatusOK, status)

	var updated models.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, updated.Status)
	assert.NotNil(t, updated.PaidAt)

	var updatedPromo models.PromoCode
	require.NoError(t, db.First(&updatedPromo, promo.ID).Error)
	assert.Equal(t, 1, updatedPromo.CurrentActivations)

	var grant models.UserPromoCode
	require.NoError(t, db.Where("user_id = ? AND promo_code_id = ?", user.ID, promo.ID).First(&grant).Error)
	assert.NotNil(t, grant.ConsumedAt)

	var updatedPromotion models.Promotion
	require.NoError(t, db.First(&updatedPromotion, promotion.ID).Error)
	assert.Equal(t, 41, updatedPromotion.UsedSlots)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrollment).Error)
	require.NotNil(t, enrollment.PaymentID)
	assert.Equal(t, payment.ID, *enrollment.PaymentID)

	var conversion models.ReferralConversion
	require.NoError(t, db.Where("code = ?", "FRIEND").First(&conversion).Error)
	assert.Equal(t, payment.ID, conversion.PaymentID)
	assert.Equal(t, int64(84915), conversion.Amount)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	app, db, fake := setupCheckout(t)
	fake.paymentStatus = utils.GatewayStatusSucceeded

	user, course, promo, promotion, _ := seedSucceededScenario(t, db)

	notification := fiber.Map{
		"event":  "payment.succeeded",
		"object": fiber.Map{"id": "gw-hook-1"},
	}

	for i := 0; i < 3; i++ {
		status, _ := postJSON(t, app, "/api/payments/webhook", notification, nil)
		require.Equal(t, http.StatusOK, status)
	}

	var updatedPromo models.PromoCode
	require.NoError(t, db.First(&updatedPromo, promo.ID).Error)
	assert.Equal(t, 1, updatedPromo.CurrentActivations)

	var updatedPromotion models.Promotion
	require.NoError(t, db.First(&updatedPromotion, promotion.ID).Error)
	assert.Equal(t, 41, updatedPromotion.UsedSlots)

	var enrollments int64
	db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)

	var conversions int64
	db.Model(&models.ReferralConversion{}).Where("code = ?", "FRIEND").Count(&conversions)
	assert.Equal(t, int64(1), conversions)
}

func TestWebhookCancelsPayment(t *testing.T) {
	app, db, fake := setupCheckout(t)
	fake.paymentStatus = utils.GatewayStatusCanceled

	_, _, promo, promotion, payment := seedSucceededScenario(t, db)

	status, _ := postJSON(t, app, "/api/payments/webhook", fiber.Map{
		"event":  "payment.canceled",
		"object": fiber.Map{"id": "gw-hook-1"},
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var updated models.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCanceled, updated.Status)

	// A canceled payment moves no counters
	var updatedPromo models.PromoCode
	require.NoError(t, db.First(&updatedPromo, promo.ID).Error)
	assert.Equal(t, 0, updatedPromo.CurrentActivations)

	var updatedPromotion models.Promotion
	require.NoError(t, db.First(&updatedPromotion, promotion.ID).Error)
	assert.Equal(t, 40, updatedPromotion.UsedSlots)
}

func TestWebhookUnknownPaymentAcknowledged(t *testing.T) {
	app, _, _ := setupCheckout(t)

	status, _ := postJSON(t, app, "/api/payments/webhook", fiber.Map{
		"event":  "payment.succeeded",
		"object": fiber.Map{"id": "gw-missing"},
	}, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestGetPaymentStatus(t *testing.T) {
	app, db, _ := setupCheckout(t)
	_, _, _, _, payment := seedSucceededScenario(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/"+payment.GatewayID+"/status", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.PaymentStatusPending, body["status"])
	assert.Equal(t, float64(84915), body["finalAmount"])
}
