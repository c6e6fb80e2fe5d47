package repository

import (
	"classroomlive/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ClassroomRepo interface {
	Create(ctx context.Context, classroom *model.Classroom) error
	GetByID(ctx context.Context, id string) (*model.Classroom, error)
	GetBySession(ctx context.Context, sessionID string) (*model.Classroom, error)
}

type classroomRepo struct {
	collection *mongo.Collection
}

func NewClassroomRepo(db *mongo.Database) ClassroomRepo {
	return &classroomRepo{collection: db.Collection("classrooms")}
}

func (r *classroomRepo) Create(ctx context.Context, classroom *model.Classroom) error {
	_, err := r.collection.InsertOne(ctx, classroom)
	return err
}

func (r *classroomRepo) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	var classroom model.Classroom
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&classroom)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &classroom, nil
}

func (r *classroomRepo) GetBySession(ctx context.Context, sessionID string) (*model.Classroom, error) {
	var classroom model.Classroom
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&classroom)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &classroom, nil
}
