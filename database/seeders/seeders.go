package seeders

import (
	"log"
	"time"

	"schooldesk_go/database"
	"schooldesk_go/models"
)

// SeedAll runs all seeders
func SeedAll() error {
	log.Println("Starting database seeding...")

	SeedStreams()
	SeedSubjects()
	SeedTeachers()
	SeedScheduleSlots()

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedStreams seeds the streams table
func SeedStreams() {
	var count int64
	database.DB.Model(&models.Stream{}).Count(&count)
	if count > 0 {
		log.Println("Streams already seeded, skipping...")
		return
	}

	streams := []models.Stream{
		{
			BaseModel: models.BaseModel{ID: 1},
			Name:      "Year 7 Alpha",
			Code:      "Y7A",
			RoomName:  "Room 101",
			Capacity:  30,
			Active:    true,
		},
		{
			BaseModel: models.BaseModel{ID: 2},
			Name:      "Year 7 Beta",
			Code:      "Y7B",
			RoomName:  "Room 102",
			Capacity:  30,
			Active:    true,
		},
		{
			BaseModel: models.BaseModel{ID: 3},
			Name:      "Year 8 Alpha",
			Code:      "Y8A",
			RoomName:  "Room 201",
			Capacity:  28,
			Active:    true,
		},
	}

	for _, stream := range streams {
		if err := database.DB.Create(&stream).Error; err != nil {
			log.Printf("Error seeding stream %s: %v", stream.Code, err)
		}
	}
	log.Printf("Seeded %d streams", len(streams))
}

// SeedSubjects seeds the subjects table
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping...")
		return
	}

	subjects := []models.Subject{
		{BaseModel: models.BaseModel{ID: 1}, Name: "Mathematics", Code: "MATH", Active: true},
		{BaseModel: models.BaseModel{ID: 2}, Name: "English", Code: "ENG", Active: true},
		{BaseModel: models.BaseModel{ID: 3}, Name: "Science", Code: "SCI", Active: true},
		{BaseModel: models.BaseModel{ID: 4}, Name: "History", Code: "HIST", Active: true},
	}

	for _, subject := range subjects {
		if err := database.DB.Create(&subject).Error; err != nil {
			log.Printf("Error seeding subject %s: %v", subject.Code, err)
		}
	}
	log.Printf("Seeded %d subjects", len(subjects))
}

// SeedTeachers seeds the teachers table
func SeedTeachers() {
	var count int64
	database.DB.Model(&models.Teacher{}).Count(&count)
	if count > 0 {
		log.Println("Teachers already seeded, skipping...")
		return
	}

	teachers := []models.Teacher{
		{
			BaseModel:       models.BaseModel{ID: 1},
			FirstName:       "Niran",
			LastName:        "Sutthi",
			Email:           "niran@schooldesk.local",
			Specializations: "MATH",
			Active:          true,
		},
		{
			BaseModel:       models.BaseModel{ID: 2},
			FirstName:       "Emma",
			LastName:        "Clarke",
			Email:           "emma@schooldesk.local",
			Specializations: "ENG,HIST",
			Active:          true,
		},
		{
			BaseModel:       models.BaseModel{ID: 3},
			FirstName:       "Somsak",
			LastName:        "Preecha",
			Email:           "somsak@schooldesk.local",
			Specializations: "SCI",
			Active:          true,
		},
	}

	for _, teacher := range teachers {
		if err := database.DB.Create(&teacher).Error; err != nil {
			log.Printf("Error seeding teacher %s: %v", teacher.Email, err)
		}
	}
	log.Printf("Seeded %d teachers", len(teachers))
}

// SeedScheduleSlots seeds a small conflict-free starter timetable
func SeedScheduleSlots() {
	var count int64
	database.DB.Model(&models.ClassScheduleSlot{}).Count(&count)
	if count > 0 {
		log.Println("Schedule slots already seeded, skipping...")
		return
	}

	termStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	termEnd := time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC)
	subject := func(id uint) *uint { return &id }
	teacher := func(id uint) *uint { return &id }

	slots := []models.ClassScheduleSlot{
		{
			StreamID: 1, SubjectID: subject(1), TeacherID: teacher(1),
			DayOfWeek: "monday", StartTime: "09:00:00", EndTime: "10:00:00",
			EffectiveDate: termStart, EndDate: &termEnd, IsActive: true,
		},
		{
			StreamID: 1, SubjectID: subject(2), TeacherID: teacher(2),
			DayOfWeek: "monday", StartTime: "10:00:00", EndTime: "11:00:00",
			EffectiveDate: termStart, EndDate: &termEnd, IsActive: true,
		},
		{
			StreamID: 2, SubjectID: subject(1), TeacherID: teacher(1),
			DayOfWeek: "monday", StartTime: "10:00:00", EndTime: "11:00:00",
			EffectiveDate: termStart, EndDate: &termEnd, IsActive: true,
		},
		{
			StreamID: 3, SubjectID: subject(3), TeacherID: teacher(3),
			DayOfWeek: "tuesday", StartTime: "09:00:00", EndTime: "10:30:00",
			EffectiveDate: termStart, IsActive: true,
		},
	}

	for i, slot := range slots {
		if err := database.DB.Create(&slot).Error; err != nil {
			log.Printf("Error seeding schedule slot %d: %v", i+1, err)
		}
	}
	log.Printf("Seeded %d schedule slots", len(slots))
}
