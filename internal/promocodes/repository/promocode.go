package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	promoerrors "roomly/internal/promocodes/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Promo_codes"
)

type PromoCodeRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	FindByID(ctx context.Context, id string) (*model.PromoCode, error)
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, promo *model.PromoCode) (*mongo.UpdateResult, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type mongoPromoCodeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPromoCodeRepository(cfg *config.Config) PromoCodeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPromoCodeRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPromoCodeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create relies on the unique index on code; a duplicate insert surfaces
// as ErrDuplicateCode.
func (r *mongoPromoCodeRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	promo.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, promo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", promoerrors.ErrDuplicateCode, promo.Code)
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		promo.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPromoCodeRepository) FindByID(ctx context.Context, id string) (*model.PromoCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	var promo model.PromoCode
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, promoerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	return &promo, nil
}

func (r *mongoPromoCodeRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promo model.PromoCode
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, promoerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find promo code by code: %w", err)
	}

	return &promo, nil
}

func (r *mongoPromoCodeRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find promo codes: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []*model.PromoCode
	if err = cursor.All(ctx, &promos); err != nil {
		return nil, fmt.Errorf("failed to decode promo codes: %w", err)
	}

	return promos, nil
}

func (r *mongoPromoCodeRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count promo codes: %w", err)
	}

	return count, nil
}

func (r *mongoPromoCodeRepository) Update(ctx context.Context, id string, promo *model.PromoCode) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"percent":    promo.Percent,
			"valid_from": promo.ValidFrom,
			"valid_to":   promo.ValidTo,
			"active":     promo.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update promo code: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, promoerrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoPromoCodeRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to set promo code active flag: %w", err)
	}

	if result.MatchedCount == 0 {
		return promoerrors.ErrNotFound
	}

	return nil
}

func (r *mongoPromoCodeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}

	if result.DeletedCount == 0 {
		return promoerrors.ErrNotFound
	}

	return nil
}
