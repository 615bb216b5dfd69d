package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edupay/config"
	"edupay/database"
	"edupay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupSchedulerDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

func TestDeactivateExpiredPromoCodes(t *testing.T) {
	db := setupSchedulerDB(t)

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	expired := models.PromoCode{Code: "EXPIRED", DiscountPercent: 10, IsActive: true, ValidUntil: &past}
	alive := models.PromoCode{Code: "ALIVE", DiscountPercent: 10, IsActive: true, ValidUntil: &future}
	open := models.PromoCode{Code: "OPEN", DiscountPercent: 10, IsActive: true}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&alive).Error)
	require.NoError(t, db.Create(&open).Error)

	DeactivateExpiredPromoCodes()

	var gotExpired models.PromoCode
	require.NoError(t, db.First(&gotExpired, expired.ID).Error)
	assert.False(t, gotExpired.IsActive)

	var gotAlive models.PromoCode
	require.NoError(t, db.First(&gotAlive, alive.ID).Error)
	assert.True(t, gotAlive.IsActive)

	var gotOpen models.PromoCode
	require.NoError(t, db.First(&gotOpen, open.ID).Error)
	assert.True(t, gotOpen.IsActive)
}

func TestReconcilePendingPayments(t *testing.T) {
	db := setupSchedulerDB(t)

	statuses := map[string]string{
		"gw-won":  GatewayStatusSucceeded,
		"gw-lost": GatewayStatusCanceled,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/payments/"):]
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GatewayPayment{ID: id, Status: statuses[id], Amount: NewGatewayAmount(0)})
	}))
	t.Cleanup(server.Close)

	config.AppConfig = &config.Config{
		GatewayApiURL: server.URL,
		GatewayShopID: "shop",
		GatewaySecret: "secret",
	}

	stale := time.Now().Add(-2 * time.Hour)
	won := models.Payment{
		Model:         gorm.Model{CreatedAt: stale},
		CheckoutType:  models.CheckoutTypeTopup,
		PaymentMethod: "bank_card",
		BaseAmount:    50000,
		FinalAmount:   50000,
		Status:        models.PaymentStatusPending,
		GatewayID:     "gw-won",
	}
	lost := models.Payment{
		Model:         gorm.Model{CreatedAt: stale},
		CheckoutType:  models.CheckoutTypeTopup,
		PaymentMethod: "bank_card",
		BaseAmount:    30000,
		FinalAmount:   30000,
		Status:        models.PaymentStatusPending,
		GatewayID:     "gw-lost",
	}
	fresh := models.Payment{
		CheckoutType:  models.CheckoutTypeTopup,
		PaymentMethod: "bank_card",
		BaseAmount:    10000,
		FinalAmount:   10000,
		Status:        models.PaymentStatusPending,
		GatewayID:     "gw-fresh",
	}
	require.NoError(t, db.Create(&won).Error)
	require.NoError(t, db.Create(&lost).Error)
	require.NoError(t, db.Create(&fresh).Error)

	ReconcilePendingPayments(NewPaymentGateway())

	var gotWon models.Payment
	require.NoError(t, db.First(&gotWon, won.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, gotWon.Status)
	assert.NotNil(t, gotWon.PaidAt)

	var gotLost models.Payment
	require.NoError(t, db.First(&gotLost, lost.ID).Error)
	assert.Equal(t, models.PaymentStatusCanceled, gotLost.Status)

	// Fresh pending payments wait for their webhook
	var gotFresh models.Payment
	require.NoError(t, db.First(&gotFresh, fresh.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, gotFresh.Status)
}
