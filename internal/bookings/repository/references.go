package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReferenceRepository reads the rooms, users and promo codes the booking
// flow depends on. Reads issued with a transaction's SessionContext see
// a snapshot consistent with the booking writes in that transaction.
type ReferenceRepository interface {
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error)
}

type mongoReferenceRepository struct {
	cfg        *config.Config
	rooms      *mongo.Collection
	users      *mongo.Collection
	promoCodes *mongo.Collection
}

func NewReferenceRepository(cfg *config.Config) ReferenceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReferenceRepository{
		cfg:        cfg,
		rooms:      db.Collection("Rooms"),
		users:      db.Collection("Users"),
		promoCodes: db.Collection("Promo_codes"),
	}
}

func (r *mongoReferenceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReferenceRepository) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrRoomNotFound, id)
	}

	var room model.Room
	err = r.rooms.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoReferenceRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrUserNotFound, id)
	}

	var user model.User
	err = r.users.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *mongoReferenceRepository) FindPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promo model.PromoCode
	err := r.promoCodes.FindOne(ctx, bson.M{"code": code}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	return &promo, nil
}
