package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go-jobmatcher/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a Mongo client, pings it, and ensures the dedup indexes
// exist. The unique indexes are what makes concurrent check-then-insert safe.
func Connect(ctx context.Context, uri, dbName string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb unreachable: %w", err)
	}

	r := &Repository{client: client, db: client.Database(dbName)}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.db.Collection("jobs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: 1},
			{Key: "company", Value: 1},
			{Key: "location", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create jobs dedup index: %w", err)
	}

	_, err = r.db.Collection("recruiters").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create recruiters index: %w", err)
	}
	return nil
}

// ---------------- JOB OPERATIONS ----------------

// UpsertJob inserts the job unless a record with the same
// (title, company, location) tuple already exists. First write wins; an
// existing match is never updated. Returns whether an insert happened.
func (r *Repository) UpsertJob(ctx context.Context, job *models.JobRecord) (bool, error) {
	dedupKey := bson.M{
		"title":    job.Title,
		"company":  job.Company,
		"location": job.Location,
	}

	err := r.db.Collection("jobs").FindOne(ctx, dedupKey).Err()
	if err == nil {
		return false, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, fmt.Errorf("failed to look up job: %w", err)
	}

	job.ID = primitive.NewObjectID()
	if _, err := r.db.Collection("jobs").InsertOne(ctx, job); err != nil {
		// Lost the race against a concurrent writer; the record exists.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert job: %w", err)
	}
	return true, nil
}

// ListJobs returns jobs matching an optional case-insensitive substring
// search over title, company and location, paginated by skip/limit.
func (r *Repository) ListJobs(ctx context.Context, search string, skip, limit int64) ([]models.JobRecord, error) {
	filter := bson.M{}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"company": pattern},
			bson.M{"location": pattern},
		}
	}

	if limit <= 0 {
		limit = 20
	}
	cursor, err := r.db.Collection("jobs").Find(ctx, filter,
		options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []models.JobRecord
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

// ---------------- RECRUITER OPERATIONS ----------------

// UpsertRecruiter inserts a recruiter by name unless already known.
func (r *Repository) UpsertRecruiter(ctx context.Context, name string, title *string, company string) (bool, error) {
	err := r.db.Collection("recruiters").FindOne(ctx, bson.M{"name": name}).Err()
	if err == nil {
		return false, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, fmt.Errorf("failed to look up recruiter: %w", err)
	}

	now := time.Now().UTC()
	rec := models.RecruiterRecord{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Title:     title,
		Company:   company,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.Collection("recruiters").InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert recruiter: %w", err)
	}
	return true, nil
}

// ListRecruiters returns recruiters paginated by skip/limit.
func (r *Repository) ListRecruiters(ctx context.Context, skip, limit int64) ([]models.RecruiterRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	cursor, err := r.db.Collection("recruiters").Find(ctx, bson.M{},
		options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recruiters: %w", err)
	}
	defer cursor.Close(ctx)

	var recruiters []models.RecruiterRecord
	if err := cursor.All(ctx, &recruiters); err != nil {
		return nil, fmt.Errorf("failed to decode recruiters: %w", err)
	}
	return recruiters, nil
}

// ---------------- USER OPERATIONS ----------------

// UserExists checks the account store for the given user id. The pipeline
// never writes users; account management is a separate service.
func (r *Repository) UserExists(ctx context.Context, userID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	count, err := r.db.Collection("users").CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// ---------------- SESSION OPERATIONS ----------------

// CreateSession inserts a new pending session and returns its id.
func (r *Repository) CreateSession(ctx context.Context, s *models.ScrapingSession) (string, error) {
	s.ID = primitive.NewObjectID()
	s.Status = models.StatusPending
	s.StartTime = time.Now().UTC()
	if _, err := r.db.Collection("scraping_sessions").InsertOne(ctx, s); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return s.ID.Hex(), nil
}

// GetSession retrieves a session by id.
func (r *Repository) GetSession(ctx context.Context, id string) (*models.ScrapingSession, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	var s models.ScrapingSession
	if err := r.db.Collection("scraping_sessions").FindOne(ctx, bson.M{"_id": objectID}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// ListSessions returns sessions, optionally filtered by user and status.
func (r *Repository) ListSessions(ctx context.Context, userID string, status models.SessionStatus, skip, limit int64) ([]models.ScrapingSession, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	if status != "" {
		filter["status"] = status
	}
	if limit <= 0 {
		limit = 10
	}

	cursor, err := r.db.Collection("scraping_sessions").Find(ctx, filter,
		options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "start_time", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.ScrapingSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// MarkRunning flips a session to running.
func (r *Repository) MarkRunning(ctx context.Context, id string) error {
	return r.updateSession(ctx, id, bson.M{"status": models.StatusRunning})
}

// MarkCompleted records the terminal completed state with counters.
func (r *Repository) MarkCompleted(ctx context.Context, id string, jobsFound, jobsAdded int) error {
	return r.updateSession(ctx, id, bson.M{
		"status":     models.StatusCompleted,
		"end_time":   time.Now().UTC(),
		"jobs_found": jobsFound,
		"jobs_added": jobsAdded,
	})
}

// MarkFailed records the terminal failed state with the error text.
func (r *Repository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.updateSession(ctx, id, bson.M{
		"status":   models.StatusFailed,
		"end_time": time.Now().UTC(),
		"error":    errMsg,
	})
}

func (r *Repository) updateSession(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", id, err)
	}
	_, err = r.db.Collection("scraping_sessions").UpdateByID(ctx, objectID, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	return nil
}
