package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing_api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type lineItemDocument struct {
	Name     string  `bson:"name"`
	Quantity int     `bson:"quantity"`
	Price    float64 `bson:"price"`
}

// billDocument embeds its line items, one document per bill
type billDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Owner         primitive.ObjectID `bson:"user"`
	CustomerName  string             `bson:"customerName"`
	CustomerPhone string             `bson:"customerPhone"`
	CustomerEmail string             `bson:"customerEmail"`
	Items         []lineItemDocument `bson:"items"`
	TotalAmount   float64            `bson:"totalAmount"`
	Date          time.Time          `bson:"date"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (d billDocument) toModel() model.Bill {
	items := make([]model.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, model.LineItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return model.Bill{
		ID:            d.ID.Hex(),
		OwnerID:       d.Owner.Hex(),
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		CustomerEmail: d.CustomerEmail,
		Items:         items,
		TotalAmount:   d.TotalAmount,
		Date:          d.Date,
		CreatedAt:     d.CreatedAt,
	}
}

type mongoBillRepository struct {
	collection *mongo.Collection
}

// NewMongoBillRepository creates a BillRepository backed by the bills collection
func NewMongoBillRepository(db *mongo.Database) BillRepository {
	return &mongoBillRepository{collection: db.Collection(billsCollection)}
}

func (r *mongoBillRepository) Create(ctx context.Context, b *model.Bill) error {
	owner, err := parseObjectID(b.OwnerID)
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if b.Items == nil {
		b.Items = []model.LineItem{}
	}
	b.TotalAmount = model.ComputeTotal(b.Items)

	items := make([]lineItemDocument, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, lineItemDocument{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	doc := billDocument{
		ID:            primitive.NewObjectID(),
		Owner:         owner,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerEmail: b.CustomerEmail,
		Items:         items,
		TotalAmount:   b.TotalAmount,
		Date:          mongoTime(b.Date),
		CreatedAt:     mongoTime(b.CreatedAt),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	b.ID = doc.ID.Hex()
	b.Date = doc.Date
	b.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoBillRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Bill, error) {
	owner, err := parseObjectID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	// ObjectIDs grow with insertion, so _id breaks ties between equal dates
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills by owner: %w", err)
	}
	defer cur.Close(ctx)

	var docs []billDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bills: %w", err)
	}
	bills := make([]model.Bill, 0, len(docs))
	for _, d := range docs {
		bills = append(bills, d.toModel())
	}
	return bills, nil
}

func (r *mongoBillRepository) FindByIDForOwner(ctx context.Context, ownerID, billID string) (*model.Bill, error) {
	filter, err := ownedBillFilter(ownerID, billID)
	if err != nil {
		return nil, err
	}
	var doc billDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find bill by ID: %w", err)
	}
	b := doc.toModel()
	return &b, nil
}

func (r *mongoBillRepository) DeleteByIDForOwner(ctx context.Context, ownerID, billID string) (bool, error) {
	filter, err := ownedBillFilter(ownerID, billID)
	if err != nil {
		return false, err
	}
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete bill: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func ownedBillFilter(ownerID, billID string) (bson.M, error) {
	id, err := parseObjectID(billID)
	if err != nil {
		return nil, err
	}
	owner, err := parseObjectID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	return bson.M{"_id": id, "user": owner}, nil
}
