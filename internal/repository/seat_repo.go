package repository

import (
	"classroomlive/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeatRepo owns the seat grid. Claim and ClearSpeaking are the
// concurrency-sensitive operations: both rely on single-document
// compare-and-set so that two racing claims on the same seat resolve
// with exactly one winner.
type SeatRepo interface {
	CreateMany(ctx context.Context, seats []*model.Seat) error
	GetByID(ctx context.Context, id string) (*model.Seat, error)
	GetByClassroom(ctx context.Context, classroomID string) ([]*model.Seat, error)
	// GetByStudent returns the seat currently held by the student in the
	// given classroom, or nil. An empty classroomID searches all classrooms.
	GetByStudent(ctx context.Context, classroomID, studentID string) (*model.Seat, error)
	// ReleaseFor resets every seat held by the student in the classroom
	// back to empty.
	ReleaseFor(ctx context.Context, classroomID, studentID string) error
	// Claim assigns the seat to the student iff it has no occupant.
	// Returns ErrSeatTaken when occupied, ErrNotFound when the seat does
	// not exist in the classroom.
	Claim(ctx context.Context, seatID, classroomID, studentID, studentName string, at time.Time) (*model.Seat, error)
	SetStatus(ctx context.Context, seatID string, status model.SeatStatus) error
	// ClearSpeaking reverts every speaking seat in the classroom to
	// occupied.
	ClearSpeaking(ctx context.Context, classroomID string) error
}

type seatRepo struct {
	collection *mongo.Collection
}

func NewSeatRepo(db *mongo.Database) SeatRepo {
	return &seatRepo{collection: db.Collection("seats")}
}

func (r *seatRepo) CreateMany(ctx context.Context, seats []*model.Seat) error {
	docs := make([]interface{}, len(seats))
	for i, s := range seats {
		docs[i] = s
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *seatRepo) GetByID(ctx context.Context, id string) (*model.Seat, error) {
	var seat model.Seat
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&seat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) GetByClassroom(ctx context.Context, classroomID string) ([]*model.Seat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "row", Value: 1}, {Key: "column", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"classroomId": classroomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var seats []*model.Seat
	if err := cursor.All(ctx, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *seatRepo) GetByStudent(ctx context.Context, classroomID, studentID string) (*model.Seat, error) {
	filter := bson.M{"studentId": studentID}
	if classroomID != "" {
		filter["classroomId"] = classroomID
	}

	var seat model.Seat
	err := r.collection.FindOne(ctx, filter).Decode(&seat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) ReleaseFor(ctx context.Context, classroomID, studentID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"classroomId": classroomID, "studentId": studentID},
		bson.M{
			"$set":   bson.M{"status": model.SeatEmpty},
			"$unset": bson.M{"studentId": "", "studentName": "", "assignedAt": ""},
		},
	)
	return err
}

func (r *seatRepo) Claim(ctx context.Context, seatID, classroomID, studentID, studentName string, at time.Time) (*model.Seat, error) {
	// Single-document CAS: the claim only matches while studentId is
	// absent, so concurrent claims cannot both succeed.
	filter := bson.M{
		"_id":         seatID,
		"classroomId": classroomID,
		"studentId":   bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"status":      model.SeatOccupied,
		"studentId":   studentID,
		"studentName": studentName,
		"assignedAt":  at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var seat model.Seat
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&seat)
	if err == nil {
		return &seat, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// Lost the CAS or the seat never existed; tell the caller which.
	existing, lookupErr := r.GetByID(ctx, seatID)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil || existing.ClassroomID != classroomID {
		return nil, ErrNotFound
	}
	return existing, ErrSeatTaken
}

func (r *seatRepo) SetStatus(ctx context.Context, seatID string, status model.SeatStatus) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": seatID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *seatRepo) ClearSpeaking(ctx context.Context, classroomID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"classroomId": classroomID, "status": model.SeatSpeaking},
		bson.M{"$set": bson.M{"status": model.SeatOccupied}},
	)
	return err
}
