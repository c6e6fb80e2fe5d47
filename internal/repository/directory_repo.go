package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionInfo is the resolved course chain for a session, as maintained
// by the enrollment system.
type SessionInfo struct {
	SessionID string `bson:"_id"`
	CourseID  string `bson:"courseId"`
	TeacherID string `bson:"teacherId"`
}

// DirectoryRepo is the narrow read-only window onto the external
// course/enrollment store, plus the attendance upsert the classroom view
// performs. Everything else about accounts and enrollments lives outside
// this service.
type DirectoryRepo interface {
	ResolveSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	IsActiveEnrollment(ctx context.Context, userID, courseID string) (bool, error)
	IsConfirmedSessionEnrollment(ctx context.Context, userID, sessionID string) (bool, error)
	// MarkAttendance upserts a "present" attendance record for the
	// student in the session.
	MarkAttendance(ctx context.Context, sessionID, userID string) error
}

type directoryRepo struct {
	sessions           *mongo.Collection
	enrollments        *mongo.Collection
	sessionEnrollments *mongo.Collection
	attendance         *mongo.Collection
}

func NewDirectoryRepo(db *mongo.Database) DirectoryRepo {
	return &directoryRepo{
		sessions:           db.Collection("sessions"),
		enrollments:        db.Collection("enrollments"),
		sessionEnrollments: db.Collection("session_enrollments"),
		attendance:         db.Collection("session_attendance"),
	}
}

func (r *directoryRepo) ResolveSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var info SessionInfo
	err := r.sessions.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&info)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (r *directoryRepo) IsActiveEnrollment(ctx context.Context, userID, courseID string) (bool, error) {
	n, err := r.enrollments.CountDocuments(ctx, bson.M{
		"studentId": userID,
		"courseId":  courseID,
		"status":    "active",
	})
	return n > 0, err
}

func (r *directoryRepo) IsConfirmedSessionEnrollment(ctx context.Context, userID, sessionID string) (bool, error) {
	n, err := r.sessionEnrollments.CountDocuments(ctx, bson.M{
		"studentId": userID,
		"sessionId": sessionID,
		"status":    "confirmed",
	})
	return n > 0, err
}

func (r *directoryRepo) MarkAttendance(ctx context.Context, sessionID, userID string) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.attendance.UpdateOne(ctx,
		bson.M{"sessionId": sessionID, "studentId": userID},
		bson.M{"$set": bson.M{"status": "present", "markedAt": time.Now()}},
		opts,
	)
	return err
}
