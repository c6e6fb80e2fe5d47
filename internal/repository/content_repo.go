package repository

import (
	"classroomlive/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContentRepo interface {
	Create(ctx context.Context, content *model.SharedContent) error
	GetByID(ctx context.Context, id string) (*model.SharedContent, error)
	GetBySeat(ctx context.Context, seatID string) ([]*model.SharedContent, error)
}

type contentRepo struct {
	collection *mongo.Collection
}

func NewContentRepo(db *mongo.Database) ContentRepo {
	return &contentRepo{collection: db.Collection("shared_content")}
}

func (r *contentRepo) Create(ctx context.Context, content *model.SharedContent) error {
	_, err := r.collection.InsertOne(ctx, content)
	return err
}

func (r *contentRepo) GetByID(ctx context.Context, id string) (*model.SharedContent, error) {
	var content model.SharedContent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&content)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func (r *contentRepo) GetBySeat(ctx context.Context, seatID string) ([]*model.SharedContent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sharedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"seatId": seatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contents []*model.SharedContent
	if err := cursor.All(ctx, &contents); err != nil {
		return nil, err
	}
	return contents, nil
}
