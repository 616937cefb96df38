package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

const (
	collectionUsers = "users"

	indexUserEmail    = "users_email_unique"
	indexUserUsername = "users_username_unique"
)

// projection applied to every read unless the password is asked for.
var withoutPassword = bson.M{"password": 0}

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type nameDocument struct {
	FirstName string `bson:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty"`
}

type userDocument struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Email     string              `bson:"email"`
	Username  string              `bson:"username"`
	Password  string              `bson:"password,omitempty"`
	Name      nameDocument        `bson:"name"`
	Role      *primitive.ObjectID `bson:"role,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexUserEmail)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexUserUsername)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toUserDocument(user)
	if err != nil {
		return err
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return mapUserWriteError(err, user)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	doc, err := toUserDocument(user)
	if err != nil {
		return err
	}

	set := bson.M{
		"email":     doc.Email,
		"username":  doc.Username,
		"name":      doc.Name,
		"updatedAt": doc.UpdatedAt,
	}
	if doc.Password != "" {
		set["password"] = doc.Password
	}
	update := bson.M{"$set": set}
	if doc.Role != nil {
		set["role"] = *doc.Role
	} else {
		update["$unset"] = bson.M{"role": ""}
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return mapUserWriteError(err, user)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string, includePassword bool) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, includePassword)
}

func (r *UserRepository) FindOne(ctx context.Context, filter ports.UserFilter) (*domain.User, error) {
	q, err := buildUserFilter(filter)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, q, filter.IncludePassword)
}

func (r *UserRepository) Find(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q, err := buildUserFilter(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	if !filter.IncludePassword {
		opts.SetProjection(withoutPassword)
	}

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, toDomainUser(&docs[i]))
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, includePassword bool) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if !includePassword {
		opts.SetProjection(withoutPassword)
	}

	var doc userDocument
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(&doc), nil
}

func buildUserFilter(f ports.UserFilter) (bson.M, error) {
	q := bson.M{}
	if f.Email != "" {
		q["email"] = f.Email
	}
	if f.Username != "" {
		q["username"] = f.Username
	}
	if f.Login != "" {
		q["$or"] = bson.A{
			bson.M{"username": f.Login},
			bson.M{"email": f.Login},
		}
	}
	if f.RoleID != "" {
		oid, err := primitive.ObjectIDFromHex(f.RoleID)
		if err != nil {
			return nil, &domain.ValidationError{Field: "role", Value: f.RoleID, Rule: domain.RuleInvalid}
		}
		q["role"] = oid
	}
	return q, nil
}

func toUserDocument(u *domain.User) (*userDocument, error) {
	doc := &userDocument{
		Email:     u.Email,
		Username:  u.Username,
		Password:  u.Password,
		Name:      nameDocument{FirstName: u.Name.FirstName, LastName: u.Name.LastName},
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, domain.ErrUserNotFound
		}
		doc.ID = oid
	}
	if u.RoleID != "" {
		oid, err := primitive.ObjectIDFromHex(u.RoleID)
		if err != nil {
			return nil, &domain.ValidationError{Field: "role", Value: u.RoleID, Rule: domain.RuleInvalid}
		}
		doc.Role = &oid
	}
	return doc, nil
}

func toDomainUser(d *userDocument) *domain.User {
	u := &domain.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Username:  d.Username,
		Password:  d.Password,
		Name:      domain.Name{FirstName: d.Name.FirstName, LastName: d.Name.LastName},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Role != nil {
		u.RoleID = d.Role.Hex()
	}
	return u
}

// mapUserWriteError turns a unique-index violation into a ValidationError
// naming the offending field.
func mapUserWriteError(err error, u *domain.User) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("write user: %w", err)
	}
	if strings.Contains(err.Error(), indexUserUsername) {
		return &domain.ValidationError{Field: "username", Value: u.Username, Rule: domain.RuleUnique}
	}
	return &domain.ValidationError{Field: "email", Value: u.Email, Rule: domain.RuleUnique}
}
