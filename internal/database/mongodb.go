// internal/database/mongodb.go
package database

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/farmfresh/farm-backend/internal/config"
	"github.com/farmfresh/farm-backend/internal/models"
)

// Document shapes. Reference ids (farmerId, customerId) are stored as the
// plain string form exposed by the logical layer, not as ObjectIDs, so a
// record written against any backend keeps the same reference semantics.

type userDoc struct {
	ID        bson.ObjectID   `bson:"_id,omitempty"`
	Username  string          `bson:"username"`
	Email     string          `bson:"email"`
	Password  string          `bson:"password"`
	Role      models.Role     `bson:"role"`
	Profile   *models.Profile `bson:"profile,omitempty"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

type productDoc struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	Name        string          `bson:"name"`
	Category    models.Category `bson:"category"`
	Price       float64         `bson:"price"`
	SKU         string          `bson:"sku"`
	FarmerID    string          `bson:"farmerId"`
	Stock       int             `bson:"stock"`
	Description string          `bson:"description,omitempty"`
	Images      []string        `bson:"images"`
	IsActive    bool            `bson:"isActive"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}

type orderDoc struct {
	ID              bson.ObjectID           `bson:"_id,omitempty"`
	CustomerID      string                  `bson:"customerId"`
	Items           []models.OrderItem      `bson:"items"`
	TotalAmount     float64                 `bson:"totalAmount"`
	Status          models.OrderStatus      `bson:"status"`
	ShippingAddress *models.ShippingAddress `bson:"shippingAddress,omitempty"`
	OrderDate       time.Time               `bson:"orderDate"`
	DeliveryDate    *time.Time              `bson:"deliveryDate,omitempty"`
	CreatedAt       time.Time               `bson:"createdAt"`
	UpdatedAt       time.Time               `bson:"updatedAt"`
}

type cartDoc struct {
	ID         bson.ObjectID      `bson:"_id,omitempty"`
	CustomerID string             `bson:"customerId"`
	Items      []models.OrderItem `bson:"items"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// MongoAdapter implements Adapter directly against the official v2 driver.
type MongoAdapter struct {
	cfg    config.DatabaseConfig
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoAdapter(cfg config.DatabaseConfig) *MongoAdapter {
	return &MongoAdapter{cfg: cfg}
}

func (a *MongoAdapter) Connect(ctx context.Context) error {
	timeout := time.Duration(a.cfg.TimeoutMS) * time.Millisecond
	clientOptions := options.Client().
		ApplyURI(a.cfg.URI).
		SetMaxPoolSize(uint64(a.cfg.PoolSize)).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return NewConnectionError(BackendMongoDB, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return NewConnectionError(BackendMongoDB, err)
	}

	a.client = client
	a.db = client.Database(a.cfg.Database)

	if err := a.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		a.client = nil
		a.db = nil
		return NewConnectionError(BackendMongoDB, err)
	}

	logrus.WithFields(logrus.Fields{"backend": BackendMongoDB, "database": a.cfg.Database}).Info("Database connected")
	return nil
}

func (a *MongoAdapter) Disconnect(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	err := a.client.Disconnect(ctx)
	a.client = nil
	a.db = nil
	if err != nil {
		return NewConnectionError(BackendMongoDB, err)
	}
	return nil
}

func (a *MongoAdapter) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		"products": {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "farmerId", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"carts": {
			{Keys: bson.D{{Key: "customerId", Value: 1}}, Options: unique},
		},
	}
	for coll, idx := range indexes {
		if _, err := a.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func (a *MongoAdapter) wrapErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return NewDuplicateKeyError(BackendMongoDB, duplicateFieldFromText(err.Error()), err)
	}
	return NewStorageError(BackendMongoDB, op, err)
}

// objectID parses a caller-supplied id. A malformed id can never match a
// stored document, so it is treated as a miss rather than an error.
func objectID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return oid, true
}

// setFields builds the $set payload from a canonicalized update map,
// decoding the string forms that cross the HTTP boundary for typed fields.
func setFields(updates map[string]any) bson.M {
	set := bson.M{}
	for key, value := range updates {
		if key == "deliveryDate" {
			if s, ok := value.(string); ok {
				if t := parseTime(s); !t.IsZero() {
					value = t
				}
			}
		}
		set[key] = value
	}
	set["updatedAt"] = time.Now().UTC()
	return set
}

// ---- users ----

func (a *MongoAdapter) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		Role:      user.Role,
		Profile:   user.Profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := a.db.Collection("users").InsertOne(ctx, doc)
	if err != nil {
		return nil, a.wrapErr("create user", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toModel(), nil
}

func (a *MongoAdapter) FindUsers(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	cursor, err := a.db.Collection("users").Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, a.wrapErr("find users", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, a.wrapErr("find users", err)
	}
	users := make([]*models.User, len(docs))
	for i := range docs {
		users[i] = docs[i].toModel()
	}
	return users, nil
}

func (a *MongoAdapter) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return a.findUser(ctx, bson.M{"_id": oid})
}

func (a *MongoAdapter) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return a.findUser(ctx, bson.M{"email": email})
}

func (a *MongoAdapter) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return a.findUser(ctx, bson.M{"username": username})
}

func (a *MongoAdapter) findUser(ctx context.Context, query bson.M) (*models.User, error) {
	var doc userDoc
	err := a.db.Collection("users").FindOne(ctx, query).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("find user", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) UpdateUser(ctx context.Context, id string, updates map[string]any) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	set := setFields(canonicalizeFields(userColumns, logicalAliases, updates))
	var doc userDoc
	err := a.db.Collection("users").FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("update user", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) DeleteUser(ctx context.Context, id string) (bool, error) {
	return a.deleteByID(ctx, "users", id)
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		Role:      d.Role,
		Profile:   d.Profile,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ---- products ----

func (a *MongoAdapter) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	images := product.Images
	if images == nil {
		images = []string{}
	}
	doc := productDoc{
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price,
		SKU:         product.SKU,
		FarmerID:    product.FarmerID,
		Stock:       product.Stock,
		Description: product.Description,
		Images:      images,
		IsActive:    product.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := a.db.Collection("products").InsertOne(ctx, doc)
	if err != nil {
		return nil, a.wrapErr("create product", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toModel(), nil
}

func (a *MongoAdapter) FindProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.FarmerID != "" {
		query["farmerId"] = filter.FarmerID
	}
	if filter.InStock {
		query["stock"] = bson.M{"$gt": 0}
	}
	cursor, err := a.db.Collection("products").Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, a.wrapErr("find products", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, a.wrapErr("find products", err)
	}
	products := make([]*models.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].toModel()
	}
	return products, nil
}

func (a *MongoAdapter) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var doc productDoc
	err := a.db.Collection("products").FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("find product", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) UpdateProduct(ctx context.Context, id string, updates map[string]any) (*models.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	set := setFields(canonicalizeFields(productColumns, logicalAliases, updates))
	var doc productDoc
	err := a.db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("update product", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return a.deleteByID(ctx, "products", id)
}

func (d *productDoc) toModel() *models.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		SKU:         d.SKU,
		FarmerID:    d.FarmerID,
		Stock:       d.Stock,
		Description: d.Description,
		Images:      images,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ---- orders ----

func (a *MongoAdapter) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now().UTC()
	orderDate := order.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	items := order.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	status := order.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	doc := orderDoc{
		CustomerID:      order.CustomerID,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Status:          status,
		ShippingAddress: order.ShippingAddress,
		OrderDate:       orderDate,
		DeliveryDate:    order.DeliveryDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	res, err := a.db.Collection("orders").InsertOne(ctx, doc)
	if err != nil {
		return nil, a.wrapErr("create order", err)
	}
	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toModel(), nil
}

func (a *MongoAdapter) FindOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	query := bson.M{}
	if filter.CustomerID != "" {
		query["customerId"] = filter.CustomerID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	cursor, err := a.db.Collection("orders").Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}))
	if err != nil {
		return nil, a.wrapErr("find orders", err)
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, a.wrapErr("find orders", err)
	}
	orders := make([]*models.Order, len(docs))
	for i := range docs {
		orders[i] = docs[i].toModel()
	}
	return orders, nil
}

func (a *MongoAdapter) FindOrderByID(ctx context.Context, id string) (*models.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var doc orderDoc
	err := a.db.Collection("orders").FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("find order", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) UpdateOrder(ctx context.Context, id string, updates map[string]any) (*models.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	set := setFields(canonicalizeFields(orderColumns, logicalAliases, updates))
	var doc orderDoc
	err := a.db.Collection("orders").FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("update order", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) DeleteOrder(ctx context.Context, id string) (bool, error) {
	return a.deleteByID(ctx, "orders", id)
}

func (d *orderDoc) toModel() *models.Order {
	items := d.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return &models.Order{
		ID:              d.ID.Hex(),
		CustomerID:      d.CustomerID,
		Items:           items,
		TotalAmount:     d.TotalAmount,
		Status:          d.Status,
		ShippingAddress: d.ShippingAddress,
		OrderDate:       d.OrderDate,
		DeliveryDate:    d.DeliveryDate,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// ---- carts ----

func (a *MongoAdapter) FindCart(ctx context.Context, customerID string) (*models.Cart, error) {
	var doc cartDoc
	err := a.db.Collection("carts").FindOne(ctx, bson.M{"customerId": customerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, a.wrapErr("find cart", err)
	}
	return doc.toModel(), nil
}

// UpdateCart replaces the customer's cart contents wholesale, creating the
// cart document if none exists yet. Last write wins.
func (a *MongoAdapter) UpdateCart(ctx context.Context, customerID string, items []models.OrderItem) (*models.Cart, error) {
	if items == nil {
		items = []models.OrderItem{}
	}
	now := time.Now().UTC()
	var doc cartDoc
	err := a.db.Collection("carts").FindOneAndUpdate(ctx,
		bson.M{"customerId": customerID},
		bson.M{
			"$set":         bson.M{"items": items, "updatedAt": now},
			"$setOnInsert": bson.M{"customerId": customerID, "createdAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, a.wrapErr("update cart", err)
	}
	return doc.toModel(), nil
}

func (a *MongoAdapter) ClearCart(ctx context.Context, customerID string) (bool, error) {
	res, err := a.db.Collection("carts").DeleteOne(ctx, bson.M{"customerId": customerID})
	if err != nil {
		return false, a.wrapErr("clear cart", err)
	}
	return res.DeletedCount > 0, nil
}

func (d *cartDoc) toModel() *models.Cart {
	items := d.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return &models.Cart{
		ID:         d.ID.Hex(),
		CustomerID: d.CustomerID,
		Items:      items,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (a *MongoAdapter) deleteByID(ctx context.Context, coll, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := a.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, a.wrapErr("delete "+coll, err)
	}
	return res.DeletedCount > 0, nil
}
