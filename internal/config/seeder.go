package config

import (
	"log"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed runs the development seeders. In prod mode nothing is seeded;
// the first admin account is created through a secure manual process.
func Seed(db *gorm.DB, cfg *Config) error {
	if !cfg.IsDev() {
		return nil
	}

	log.Println("🌱 Running database seeders...")

	if err := seedAdminUser(db); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := seedDemoCustomers(db); err != nil {
		log.Printf("⚠️ Customer seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account (development only)
func seedAdminUser(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@onlinebank.example",
		Password: hashed,
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDemoCustomers seeds a handful of customers to exercise the loan
// and credit card flows against
func seedDemoCustomers(db *gorm.DB) error {
	var count int64
	db.Model(&models.Customer{}).Count(&count)
	if count > 0 {
		return nil
	}

	customers := []models.Customer{
		{
			FirstName:     "Ayşe",
			LastName:      "Yılmaz",
			IdentityNo:    "10000000146",
			Email:         "ayse.yilmaz@example.com",
			MonthlySalary: decimal.NewFromInt(25000),
		},
		{
			FirstName:     "Mehmet",
			LastName:      "Demir",
			IdentityNo:    "10000000244",
			Email:         "mehmet.demir@example.com",
			MonthlySalary: decimal.NewFromInt(18000),
		},
		{
			FirstName:     "Elif",
			LastName:      "Kaya",
			IdentityNo:    "10000000342",
			Email:         "elif.kaya@example.com",
			MonthlySalary: decimal.NewFromInt(42000),
		},
	}

	if err := db.Create(&customers).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d demo customers", len(customers))
	return nil
}
