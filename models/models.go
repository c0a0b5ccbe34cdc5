package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Stream is a teaching group together with the room it occupies. It is the
// primary resource a timetable slot books.
type Stream struct {
	BaseModel
	Name     string `json:"name" gorm:"size:255;not null"`
	Code     string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	RoomName string `json:"room_name" gorm:"size:100"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active" gorm:"default:true"`

	// Relationships
	Slots []ClassScheduleSlot `json:"slots,omitempty" gorm:"foreignKey:StreamID"`
}

// Teacher model
type Teacher struct {
	BaseModel
	FirstName       string `json:"first_name" gorm:"size:100;not null"`
	LastName        string `json:"last_name" gorm:"size:100"`
	Email           string `json:"email" gorm:"size:255;uniqueIndex"`
	Phone           string `json:"phone" gorm:"size:20"`
	Specializations string `json:"specializations" gorm:"type:text"`
	Active          bool   `json:"active" gorm:"default:true"`
}

// Subject model
type Subject struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Code        string `json:"code" gorm:"size:100;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`
}

// ClassScheduleSlot is one recurring weekly timetable entry: a stream (and
// optionally a teacher) occupies a time window on one weekday, from
// EffectiveDate until EndDate. A NULL EndDate means the recurrence is
// open-ended. Inactive slots are invisible to conflict checks.
type ClassScheduleSlot struct {
	BaseModel
	StreamID  uint  `json:"stream_id" gorm:"not null;index:idx_slot_stream_day"`
	SubjectID *uint `json:"subject_id"`
	TeacherID *uint `json:"teacher_id" gorm:"index:idx_slot_teacher_day"`

	// monday..sunday, validated in utils.IsValidWeekday
	DayOfWeek string `json:"day_of_week" gorm:"size:20;not null;index:idx_slot_stream_day;index:idx_slot_teacher_day"`
	// Wall-clock times stored as HH:MM:SS with no date component
	StartTime string `json:"start_time" gorm:"size:8;not null"`
	EndTime   string `json:"end_time" gorm:"size:8;not null"`

	EffectiveDate time.Time  `json:"effective_date" gorm:"not null"`
	EndDate       *time.Time `json:"end_date" gorm:"default:null"`

	// No column default on purpose: with one, GORM omits a zero-valued bool
	// on insert and an explicitly inactive slot would be stored active.
	IsActive bool   `json:"is_active"`
	Notes    string `json:"notes" gorm:"type:text"`

	// Relationships
	Stream  Stream   `json:"stream,omitempty" gorm:"foreignKey:StreamID"`
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
	RequestID  string `json:"request_id" gorm:"size:64"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
