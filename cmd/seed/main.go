package main

import (
	"log"
	"os"

	"catering-backend/internal/database"
	"catering-backend/internal/model"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Development seeder: a few departments and one user per role so the API can
// be exercised immediately. Idempotent, safe to re-run.
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	log.Println("--- Seeding Database ---")
	seedDepartments(db)
	seedUsers(db)
	log.Println("--- Seeding Complete ---")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedDepartments(db *gorm.DB) {
	departments := []model.Department{
		{Name: "Computer Science", Code: "CSC-001"},
		{Name: "Mechanical Engineering", Code: "MEC-001"},
		{Name: "Business Administration", Code: "BUS-001"},
		{Name: "Student Affairs", Code: "STA-001"},
	}

	for _, dept := range departments {
		var existing model.Department
		if err := db.First(&existing, "name = ?", dept.Name).Error; err == nil {
			continue
		}
		if err := db.Create(&dept).Error; err != nil {
			log.Printf("Failed to seed department %s: %v", dept.Name, err)
			continue
		}
		log.Printf("Seeded department %s (%s)", dept.Name, dept.Code)
	}
}

func seedUsers(db *gorm.DB) {
	var csDept model.Department
	_ = db.First(&csDept, "code = ?", "CSC-001").Error

	users := []model.User{
		{Subject: "seed-requester", Username: "Alice Mensah", Email: "alice.mensah@university.edu", Phone: "0244000001", Role: model.RoleRequester},
		{Subject: "seed-approver", Username: "Kwame Boateng", Email: "kwame.boateng@university.edu", Phone: "0244000002", Role: model.RoleApprover},
		{Subject: "seed-finance", Username: "Efua Owusu", Email: "efua.owusu@university.edu", Phone: "0244000003", Role: model.RoleFinanceOfficer},
		{Subject: "seed-admin", Username: "System Admin", Email: "admin@university.edu", Phone: "0244000004", Role: model.RoleAdmin},
	}

	for _, user := range users {
		var existing model.User
		if err := db.First(&existing, "subject = ?", user.Subject).Error; err == nil {
			continue
		}
		if csDept.ID != uuid.Nil && user.Role == model.RoleRequester {
			deptID := csDept.ID
			user.DepartmentID = &deptID
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", user.Email, err)
			continue
		}
		log.Printf("Seeded user %s (%s)", user.Username, user.Role)
	}
}
