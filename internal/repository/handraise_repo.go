package repository

import (
	"classroomlive/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HandRaiseRepo keeps the append-only hand-raise history. Lower and
// Acknowledge are CAS operations gated on the record still being active.
type HandRaiseRepo interface {
	Create(ctx context.Context, hr *model.HandRaise) error
	GetByID(ctx context.Context, id string) (*model.HandRaise, error)
	GetActiveBySeat(ctx context.Context, seatID string) (*model.HandRaise, error)
	GetActiveByClassroom(ctx context.Context, classroomID string) ([]*model.HandRaise, error)
	// Lower closes the record; ErrStale if already lowered.
	Lower(ctx context.Context, id string, at time.Time) error
	// Acknowledge marks the record as called on; ErrStale if already
	// lowered, ErrNotFound if it never existed.
	Acknowledge(ctx context.Context, id string) (*model.HandRaise, error)
}

type handRaiseRepo struct {
	collection *mongo.Collection
}

func NewHandRaiseRepo(db *mongo.Database) HandRaiseRepo {
	return &handRaiseRepo{collection: db.Collection("hand_raises")}
}

func (r *handRaiseRepo) Create(ctx context.Context, hr *model.HandRaise) error {
	_, err := r.collection.InsertOne(ctx, hr)
	return err
}

func (r *handRaiseRepo) GetByID(ctx context.Context, id string) (*model.HandRaise, error) {
	var hr model.HandRaise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &hr, nil
}

func (r *handRaiseRepo) GetActiveBySeat(ctx context.Context, seatID string) (*model.HandRaise, error) {
	var hr model.HandRaise
	err := r.collection.FindOne(ctx, bson.M{"seatId": seatID, "loweredAt": bson.M{"$exists": false}}).Decode(&hr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &hr, nil
}

func (r *handRaiseRepo) GetActiveByClassroom(ctx context.Context, classroomID string) ([]*model.HandRaise, error) {
	opts := options.Find().SetSort(bson.D{{Key: "raisedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"classroomId": classroomID, "loweredAt": bson.M{"$exists": false}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raises []*model.HandRaise
	if err := cursor.All(ctx, &raises); err != nil {
		return nil, err
	}
	return raises, nil
}

func (r *handRaiseRepo) Lower(ctx context.Context, id string, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "loweredAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"loweredAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

func (r *handRaiseRepo) Acknowledge(ctx context.Context, id string) (*model.HandRaise, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var hr model.HandRaise
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "loweredAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"acknowledged": true}},
		opts,
	).Decode(&hr)
	if err == nil {
		return &hr, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	existing, lookupErr := r.GetByID(ctx, id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	return nil, ErrStale
}
