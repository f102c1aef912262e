package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"hrms-console/internal/models"
	"hrms-console/internal/repository"
)

const defaultAPIURL = "http://localhost:8000"

var sampleEmployees = []models.CreateEmployeeCommand{
	{EmployeeID: "EMP001", FullName: "Alice Smith", Email: "alice.smith@example.com", Department: "Engineering"},
	{EmployeeID: "EMP002", FullName: "Bob Jones", Email: "bob.jones@example.com", Department: "Sales"},
	{EmployeeID: "EMP003", FullName: "Carla Diaz", Email: "carla.diaz@example.com", Department: "Human Resources"},
	{EmployeeID: "EMP004", FullName: "Dan Brown", Email: "dan.brown@example.com", Department: "Engineering"},
	{EmployeeID: "EMP005", FullName: "Eve Moreau", Email: "eve.moreau@example.com", Department: "Finance"},
}

func main() {
	fmt.Println("🚀 HRMS Sample Data Seed")
	fmt.Println("========================")

	// Load .env file if exists
	godotenv.Load()

	url := getEnv("HRMS_API_URL", defaultAPIURL)
	username := getEnv("HRMS_USERNAME", "admin")
	password := os.Getenv("HRMS_PASSWORD")
	if password == "" {
		fmt.Println("❌ HRMS_PASSWORD not set")
		os.Exit(1)
	}

	fmt.Printf("Connecting to: %s\n", url)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	httpClient := &http.Client{Timeout: 10 * time.Second}
	creds := repository.NewSessionCredentials("")
	auth := repository.NewRESTAuthRepository(url, creds, httpClient)
	employees := repository.NewRESTEmployeeRepository(url, creds, httpClient)

	if _, err := auth.Authenticate(ctx, username, password); err != nil {
		fmt.Printf("❌ Auth failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Authentication successful")

	created, skipped := 0, 0
	for _, cmd := range sampleEmployees {
		fmt.Printf("\n📦 Creating employee: %s\n", cmd.EmployeeID)
		if _, err := employees.Create(ctx, cmd); err != nil {
			if repository.Detail(err) == "Employee ID already exists" {
				fmt.Printf("   Already exists, skipping\n")
				skipped++
				continue
			}
			fmt.Printf("   ⚠️  %v\n", err)
			continue
		}
		fmt.Printf("   ✅ Created successfully\n")
		created++
	}

	fmt.Printf("\n🎉 Seed complete! created=%d skipped=%d\n", created, skipped)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
