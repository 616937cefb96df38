package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

const collectionDocuments = "documents"

type DocumentRepository struct {
	col *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{col: db.Collection(collectionDocuments)}
}

type documentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Owner     primitive.ObjectID `bson:"owner"`
	Access    string             `bson:"access"`
	Role      string             `bson:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func documentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "access", Value: 1}, {Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
}

// Create inserts a new document and sets its ID.
func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toDocumentDocument(d)
	if err != nil {
		return err
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid.Hex()
	}
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDocumentNotFound
	}

	var doc documentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return toDomainDocument(&doc), nil
}

func (r *DocumentRepository) Update(ctx context.Context, d *domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(d.ID)
	if err != nil {
		return domain.ErrDocumentNotFound
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":     d.Title,
		"content":   d.Content,
		"access":    string(d.Access),
		"updatedAt": d.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDocumentNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// List returns the newest documents first, one page at a time.
func (r *DocumentRepository) List(ctx context.Context, f ports.ListDocumentsFilter) ([]*domain.Document, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildDocumentFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Page-1) * int64(f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	var docs []documentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode documents: %w", err)
	}

	out := make([]*domain.Document, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainDocument(&docs[i]))
	}
	return out, total, nil
}

// buildDocumentFilter mirrors domain.Document.VisibleTo as a Mongo query.
func buildDocumentFilter(f ports.ListDocumentsFilter) bson.M {
	var clauses bson.A

	if !f.Viewer.IsAdmin() {
		visible := bson.A{bson.M{"access": string(domain.AccessPublic)}}
		if oid, err := primitive.ObjectIDFromHex(f.Viewer.UserID); err == nil {
			visible = append(visible, bson.M{"owner": oid})
		}
		if f.Viewer.Role != "" {
			visible = append(visible, bson.M{"access": string(domain.AccessRole), "role": f.Viewer.Role})
		}
		clauses = append(clauses, bson.M{"$or": visible})
	}

	if f.OwnerID != "" {
		oid, err := primitive.ObjectIDFromHex(f.OwnerID)
		if err != nil {
			// No document can match a malformed owner id.
			oid = primitive.NilObjectID
		}
		clauses = append(clauses, bson.M{"owner": oid})
	}

	if f.Search != "" {
		clauses = append(clauses, bson.M{"title": primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	default:
		return bson.M{"$and": clauses}
	}
}

func toDocumentDocument(d *domain.Document) (*documentDocument, error) {
	owner, err := primitive.ObjectIDFromHex(d.OwnerID)
	if err != nil {
		return nil, &domain.ValidationError{Field: "owner", Value: d.OwnerID, Rule: domain.RuleInvalid}
	}
	return &documentDocument{
		Title:     d.Title,
		Content:   d.Content,
		Owner:     owner,
		Access:    string(d.Access),
		Role:      d.Role,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func toDomainDocument(d *documentDocument) *domain.Document {
	return &domain.Document{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		OwnerID:   d.Owner.Hex(),
		Access:    domain.Access(d.Access),
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
