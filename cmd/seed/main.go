package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tourly/internal/shared/config"
	"tourly/internal/shared/database"
	"tourly/internal/tours"
	"tourly/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Tourly Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	// Delete in reverse dependency order
	tables := []string{
		"passenger_requests",
		"passengers",
		"orders",
		"lead_holds",
		"tours",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Disable foreign key constraints temporarily
	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	// Re-enable foreign key constraints
	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	// Seed users first (no dependencies)
	if _, err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	// Seed tours
	if _, err := s.SeedTours(); err != nil {
		return fmt.Errorf("failed to seed tours: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates one user per role so every permission path is testable
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"superadmin", "Super", "Admin", "superadmin@tourly.dev", users.RoleSuperAdmin},
		{"admin", "Admin", "User", "admin@tourly.dev", users.RoleAdmin},
		{"manager", "Maya", "Manager", "manager@tourly.dev", users.RoleManager},
		{"provider", "Paul", "Provider", "provider@tourly.dev", users.RoleProvider},
		{"user1", "Aigerim", "Bekova", "aigerim@tourly.dev", users.RoleUser},
		{"user2", "Daniyar", "Suleimenov", "daniyar@tourly.dev", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedTours creates sample tours covering limited and unlimited seat pools
func (s *Seeder) SeedTours() ([]uuid.UUID, error) {
	fmt.Println("  🗺️ Seeding tours...")

	var tourIDs []uuid.UUID

	seats40 := 40
	seats12 := 12
	seats25 := 25

	toursData := []tours.Tour{
		{
			ID:             uuid.New(),
			Title:          "Charyn Canyon Weekend",
			Description:    "Two-day group trip to Charyn Canyon with guided hikes and a night at the Eco Park lodge.",
			SeatCapacity:   40,
			AvailableSeats: &seats40,
			BasePrice:      45000,
			Dates:          upcomingDates(14, 28, 42),
			Hotels:         []string{"Eco Park Lodge", "Canyon View Camp"},
			Services: []tours.TourService{
				{Name: "Insurance", Price: 2500},
				{Name: "Photo Package", Price: 5000},
			},
			Status: tours.StatusActive,
		},
		{
			ID:             uuid.New(),
			Title:          "Istanbul City Break",
			Description:    "Five days in Istanbul: old town, Bosphorus cruise and a free day for shopping.",
			SeatCapacity:   12,
			AvailableSeats: &seats12,
			BasePrice:      320000,
			Dates:          upcomingDates(21, 49),
			Hotels:         []string{"Grand Pera Hotel", "Sultanahmet Inn", "Bosphorus Suites"},
			Services: []tours.TourService{
				{Name: "Visa Support", Price: 15000},
				{Name: "Insurance", Price: 8000},
				{Name: "Airport Transfer", Price: 12000},
			},
			Status: tours.StatusActive,
		},
		{
			ID:             uuid.New(),
			Title:          "Almaty Mountain Retreat",
			Description:    "Open-group retreat in the Trans-Ili Alatau. No fixed seat pool, groups are formed per departure.",
			SeatCapacity:   0,
			AvailableSeats: nil, // unlimited
			BasePrice:      78000,
			Dates:          upcomingDates(7, 14, 21, 35),
			Hotels:         []string{"Shymbulak Resort", "Medeu Chalet"},
			Services: []tours.TourService{
				{Name: "Insurance", Price: 3500},
				{Name: "Ski Pass", Price: 18000},
			},
			Status: tours.StatusActive,
		},
		{
			ID:             uuid.New(),
			Title:          "Mangystau Expedition",
			Description:    "Seven-day jeep expedition across the Mangystau desert landscapes.",
			SeatCapacity:   25,
			AvailableSeats: &seats25,
			BasePrice:      195000,
			Dates:          upcomingDates(30, 60),
			Hotels:         []string{"Aktau Grand", "Desert Base Camp"},
			Services: []tours.TourService{
				{Name: "Insurance", Price: 6000},
				{Name: "Satellite Phone", Price: 9000},
			},
			Status: tours.StatusActive,
		},
	}

	for i := range toursData {
		tour := &toursData[i]
		tour.CreatedAt = time.Now()
		tour.UpdatedAt = time.Now()

		if err := s.db.PostgreSQL.Create(tour).Error; err != nil {
			return nil, fmt.Errorf("failed to create tour %s: %w", tour.Title, err)
		}

		tourIDs = append(tourIDs, tour.ID)
		fmt.Printf("    ✅ Created tour: %s (%d dates)\n", tour.Title, len(tour.Dates))
	}

	return tourIDs, nil
}

// upcomingDates builds departure dates the given number of days from now.
func upcomingDates(daysFromNow ...int) []string {
	dates := make([]string, 0, len(daysFromNow))
	for _, d := range daysFromNow {
		dates = append(dates, time.Now().AddDate(0, 0, d).Format("2006-01-02"))
	}
	return dates
}
