package repository

import (
	"classroomlive/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoundRepo stores update rounds and their turns. CloseTurn is a CAS
// gated on the turn still being open, so two racing end-turn calls
// resolve with one winner.
type RoundRepo interface {
	CreateRound(ctx context.Context, round *model.UpdateRound) error
	GetRound(ctx context.Context, id string) (*model.UpdateRound, error)
	GetActiveRound(ctx context.Context, classroomID string) (*model.UpdateRound, error)
	EndRound(ctx context.Context, id string, at time.Time) error

	CreateTurn(ctx context.Context, turn *model.UpdateTurn) error
	GetTurn(ctx context.Context, id string) (*model.UpdateTurn, error)
	GetTurns(ctx context.Context, roundID string) ([]*model.UpdateTurn, error)
	// CloseTurn closes the turn; ErrStale if already closed, ErrNotFound
	// if it never existed.
	CloseTurn(ctx context.Context, id string, at time.Time) error
}

type roundRepo struct {
	rounds *mongo.Collection
	turns  *mongo.Collection
}

func NewRoundRepo(db *mongo.Database) RoundRepo {
	return &roundRepo{
		rounds: db.Collection("update_rounds"),
		turns:  db.Collection("update_turns"),
	}
}

func (r *roundRepo) CreateRound(ctx context.Context, round *model.UpdateRound) error {
	_, err := r.rounds.InsertOne(ctx, round)
	return err
}

func (r *roundRepo) GetRound(ctx context.Context, id string) (*model.UpdateRound, error) {
	var round model.UpdateRound
	err := r.rounds.FindOne(ctx, bson.M{"_id": id}).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (r *roundRepo) GetActiveRound(ctx context.Context, classroomID string) (*model.UpdateRound, error) {
	var round model.UpdateRound
	err := r.rounds.FindOne(ctx, bson.M{"classroomId": classroomID, "endedAt": bson.M{"$exists": false}}).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (r *roundRepo) EndRound(ctx context.Context, id string, at time.Time) error {
	res, err := r.rounds.UpdateOne(ctx,
		bson.M{"_id": id, "endedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"endedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

func (r *roundRepo) CreateTurn(ctx context.Context, turn *model.UpdateTurn) error {
	_, err := r.turns.InsertOne(ctx, turn)
	return err
}

func (r *roundRepo) GetTurn(ctx context.Context, id string) (*model.UpdateTurn, error) {
	var turn model.UpdateTurn
	err := r.turns.FindOne(ctx, bson.M{"_id": id}).Decode(&turn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &turn, nil
}

func (r *roundRepo) GetTurns(ctx context.Context, roundID string) ([]*model.UpdateTurn, error) {
	cursor, err := r.turns.Find(ctx, bson.M{"roundId": roundID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []*model.UpdateTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *roundRepo) CloseTurn(ctx context.Context, id string, at time.Time) error {
	res, err := r.turns.UpdateOne(ctx,
		bson.M{"_id": id, "endedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"endedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		existing, lookupErr := r.GetTurn(ctx, id)
		if lookupErr != nil {
			return lookupErr
		}
		if existing == nil {
			return ErrNotFound
		}
		return ErrStale
	}
	return nil
}
