package main

import (
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"ai-bizops-be/internal/entity"
	"ai-bizops-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&entity.Sale{},
		&entity.Customer{},
		&entity.Product{},
		&entity.SupportTicket{},
		&entity.Metric{},
	); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	color.Cyan("🚀 Seeding business data\n")

	seedSales(db)
	seedCustomers(db)
	seedProducts(db)
	seedTickets(db)
	seedMetrics(db)

	color.Green("Seeding completed!")
}

func seedSales(db *gorm.DB) {
	var count int64
	db.Model(&entity.Sale{}).Count(&count)
	if count > 0 {
		color.Yellow("Sales already seeded, skipping...")
		return
	}

	now := time.Now()
	regions := []string{"North", "South", "East", "West"}
	for i := 0; i < 30; i++ {
		sale := entity.Sale{
			Id:        uuid.New(),
			Date:      now.AddDate(0, 0, -i),
			Amount:    float64(10000 + i*750 + (i%4)*1500),
			Orders:    50 + i*3,
			Region:    regions[i%len(regions)],
			CreatedAt: now,
		}
		if err := db.Create(&sale).Error; err != nil {
			color.Red("Failed to create sale: %v", err)
		}
	}
	color.Green("Seeded 30 days of sales")
}

func seedCustomers(db *gorm.DB) {
	var count int64
	db.Model(&entity.Customer{}).Count(&count)
	if count > 0 {
		color.Yellow("Customers already seeded, skipping...")
		return
	}

	now := time.Now()
	customers := []entity.Customer{
		{Id: uuid.New(), Name: "Acme Corp", Segment: "Enterprise", Revenue: 450000, CreatedAt: now},
		{Id: uuid.New(), Name: "Globex Industries", Segment: "Enterprise", Revenue: 380000, CreatedAt: now},
		{Id: uuid.New(), Name: "Initech Solutions", Segment: "SMB", Revenue: 85000, CreatedAt: now},
		{Id: uuid.New(), Name: "Hooli Ventures", Segment: "SMB", Revenue: 62000, CreatedAt: now},
		{Id: uuid.New(), Name: "Pied Piper", Segment: "Startup", Revenue: 12000, CreatedAt: now},
	}
	for _, c := range customers {
		if err := db.Create(&c).Error; err != nil {
			color.Red("Failed to create customer '%s': %v", c.Name, err)
		}
	}
	color.Green("Seeded %d customers", len(customers))
}

func seedProducts(db *gorm.DB) {
	var count int64
	db.Model(&entity.Product{}).Count(&count)
	if count > 0 {
		color.Yellow("Products already seeded, skipping...")
		return
	}

	now := time.Now()
	products := []entity.Product{
		{Id: uuid.New(), Name: "Analytics Suite", Category: "Software", Price: 299, Stock: 0, CreatedAt: now},
		{Id: uuid.New(), Name: "Data Connector", Category: "Software", Price: 99, Stock: 0, CreatedAt: now},
		{Id: uuid.New(), Name: "Sensor Kit", Category: "Hardware", Price: 549, Stock: 120, CreatedAt: now},
		{Id: uuid.New(), Name: "Gateway Hub", Category: "Hardware", Price: 899, Stock: 45, CreatedAt: now},
		{Id: uuid.New(), Name: "Onboarding Package", Category: "Services", Price: 1500, Stock: 0, CreatedAt: now},
	}
	for _, p := range products {
		if err := db.Create(&p).Error; err != nil {
			color.Red("Failed to create product '%s': %v", p.Name, err)
		}
	}
	color.Green("Seeded %d products", len(products))
}

func seedTickets(db *gorm.DB) {
	var count int64
	db.Model(&entity.SupportTicket{}).Count(&count)
	if count > 0 {
		color.Yellow("Support tickets already seeded, skipping...")
		return
	}

	now := time.Now()
	categories := []string{"Billing", "Technical", "Account", "Technical", "Billing"}
	statuses := []string{"open", "open", "resolved", "in_progress", "resolved"}
	priorities := []string{"high", "medium", "low", "high", "medium"}
	for i := range categories {
		ticket := entity.SupportTicket{
			Id:        uuid.New(),
			Category:  categories[i],
			Status:    statuses[i],
			Priority:  priorities[i],
			CreatedAt: now.AddDate(0, 0, -i),
		}
		if err := db.Create(&ticket).Error; err != nil {
			color.Red("Failed to create ticket: %v", err)
		}
	}
	color.Green("Seeded %d support tickets", len(categories))
}

func seedMetrics(db *gorm.DB) {
	var count int64
	db.Model(&entity.Metric{}).Count(&count)
	if count > 0 {
		color.Yellow("Metrics already seeded, skipping...")
		return
	}

	now := time.Now()
	names := []string{"mrr", "churn_rate", "active_users", "nps"}
	values := []float64{125000, 2.4, 8450, 62}
	for i, name := range names {
		metric := entity.Metric{
			Id:        uuid.New(),
			Name:      name,
			Value:     values[i],
			Date:      now,
			CreatedAt: now,
		}
		if err := db.Create(&metric).Error; err != nil {
			color.Red("Failed to create metric '%s': %v", name, err)
		}
	}
	color.Green("Seeded %d metrics", len(names))
}
