package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobRecord is the persisted form of an enriched job offer. Field names match
// the documents the listing endpoints already serve, so optional fields stay
// pointers and absent values marshal to null.
type JobRecord struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title               string             `bson:"title" json:"title"`
	Company             string             `bson:"company" json:"company"`
	CompanyLogo         *string            `bson:"companyLogo" json:"companyLogo"`
	CompanyWebsite      *string            `bson:"companyWebsite" json:"companyWebsite"`
	Location            string             `bson:"location" json:"location"`
	Type                *string            `bson:"type" json:"type"`
	Salary              *string            `bson:"salary" json:"salary"`
	Description         string             `bson:"description" json:"description"`
	Responsibilities    []string           `bson:"responsibilities" json:"responsibilities"`
	Requirements        []string           `bson:"requirements" json:"requirements"`
	NiceToHave          []string           `bson:"niceToHave" json:"niceToHave"`
	Benefits            []string           `bson:"benefits" json:"benefits"`
	ExperienceLevel     *string            `bson:"experienceLevel" json:"experienceLevel"`
	Education           *string            `bson:"education" json:"education"`
	Languages           []string           `bson:"languages" json:"languages"`
	Remote              *bool              `bson:"remote" json:"remote"`
	Urgent              *bool              `bson:"urgent" json:"urgent"`
	PostedAt            *time.Time         `bson:"postedAt" json:"postedAt"`
	StartDate           *time.Time         `bson:"startDate" json:"startDate"`
	ApplicationDeadline *time.Time         `bson:"applicationDeadline" json:"applicationDeadline"`
	Views               int                `bson:"views" json:"views"`
	Applications        int                `bson:"applications" json:"applications"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
	Status              string             `bson:"status" json:"status"`
}

// RecruiterRecord is created opportunistically when enrichment surfaces a
// recruiter name. Name is the only dedup key the source exposes.
type RecruiterRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Title     *string            `bson:"title" json:"title"`
	Company   string             `bson:"company" json:"company"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// SessionFilters enumerates the recognized scraping options. Extend by adding
// fields, not by smuggling keys through a map.
type SessionFilters struct {
	JobType *string `bson:"job_type,omitempty" json:"job_type,omitempty"`
}

// ScrapingSession tracks one end-to-end pipeline run for a user.
type ScrapingSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	SearchQuery string             `bson:"search_query" json:"search_query"`
	Location    *string            `bson:"location" json:"location"`
	Filters     SessionFilters     `bson:"filters" json:"filters"`
	Status      SessionStatus      `bson:"status" json:"status"`
	StartTime   time.Time          `bson:"start_time" json:"start_time"`
	EndTime     *time.Time         `bson:"end_time" json:"end_time"`
	JobsFound   int                `bson:"jobs_found" json:"jobs_found"`
	JobsAdded   int                `bson:"jobs_added" json:"jobs_added"`
	Error       *string            `bson:"error" json:"error"`
}
