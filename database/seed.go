package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/campusgrid/campus-api/model"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions in hierarchy order so foreign key
// references resolve.
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedCountries(); err != nil {
		return fmt.Errorf("failed to seed countries: %w", err)
	}
	if err := s.SeedStates(); err != nil {
		return fmt.Errorf("failed to seed states: %w", err)
	}
	if err := s.SeedUniversities(); err != nil {
		return fmt.Errorf("failed to seed universities: %w", err)
	}
	if err := s.SeedCampuses(); err != nil {
		return fmt.Errorf("failed to seed campuses: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedCountries inserts the starter countries, skipping ones already
// present so the seeder stays re-runnable.
func (s *Seeder) SeedCountries() error {
	countries := []model.Country{
		{Name: "India", Code: "IN"},
		{Name: "United States", Code: "US"},
		{Name: "United Kingdom", Code: "GB"},
	}

	for _, country := range countries {
		var count int64
		s.db.Model(&model.Country{}).Where("code = ?", country.Code).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&country).Error; err != nil {
			return err
		}
		log.Printf("Seeded country: %s", country.Name)
	}
	return nil
}

// SeedStates inserts starter states under their countries.
func (s *Seeder) SeedStates() error {
	states := []struct {
		name        string
		code        string
		countryCode string
	}{
		{"Madhya Pradesh", "MP", "IN"},
		{"Maharashtra", "MH", "IN"},
		{"California", "CA", "US"},
	}

	for _, entry := range states {
		var count int64
		s.db.Model(&model.State{}).Where("state_code = ?", entry.code).Count(&count)
		if count > 0 {
			continue
		}

		var country model.Country
		if err := s.db.Where("code = ?", entry.countryCode).First(&country).Error; err != nil {
			return fmt.Errorf("country %s not seeded: %w", entry.countryCode, err)
		}

		state := model.State{Name: entry.name, StateCode: entry.code, CountryID: &country.ID}
		if err := s.db.Create(&state).Error; err != nil {
			return err
		}
		log.Printf("Seeded state: %s", state.Name)
	}
	return nil
}

// SeedUniversities inserts starter universities under their states.
func (s *Seeder) SeedUniversities() error {
	universities := []struct {
		name      string
		stateCode string
	}{
		{"Rajiv Gandhi Proudyogiki Vishwavidyalaya", "MP"},
		{"University of Mumbai", "MH"},
	}

	for _, entry := range universities {
		var count int64
		s.db.Model(&model.University{}).Where("name = ?", entry.name).Count(&count)
		if count > 0 {
			continue
		}

		var state model.State
		if err := s.db.Where("state_code = ?", entry.stateCode).First(&state).Error; err != nil {
			return fmt.Errorf("state %s not seeded: %w", entry.stateCode, err)
		}

		university := model.University{Name: entry.name, StateID: &state.ID}
		if err := s.db.Create(&university).Error; err != nil {
			return err
		}
		log.Printf("Seeded university: %s", university.Name)
	}
	return nil
}

// SeedCampuses inserts a college with a couple of buildings and rooms
// under the first seeded university, giving a fresh install something
// to browse.
func (s *Seeder) SeedCampuses() error {
	var count int64
	s.db.Model(&model.College{}).Count(&count)
	if count > 0 {
		return nil
	}

	var university model.University
	if err := s.db.First(&university).Error; err != nil {
		return fmt.Errorf("no university to attach colleges to: %w", err)
	}

	college := model.College{Name: "School of Information Technology", UniversityID: &university.ID}
	if err := s.db.Create(&college).Error; err != nil {
		return err
	}

	for _, buildingName := range []string{"Block A", "Block B"} {
		building := model.Building{Name: buildingName, CollegeID: &college.ID}
		if err := s.db.Create(&building).Error; err != nil {
			return err
		}
		for _, roomName := range []string{"Lecture Hall 1", "Lab 1"} {
			room := model.Room{Name: roomName, BuildingID: &building.ID}
			if err := s.db.Create(&room).Error; err != nil {
				return err
			}
		}
	}

	log.Printf("Seeded campus under university: %s", university.Name)
	return nil
}

// RunSeeds is the entrypoint used by the seed command.
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
