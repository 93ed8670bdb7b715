package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

const (
	usersCollection     = "users"
	documentsCollection = "documents"
	profilesCollection  = "profiles"
)

type (
	mongoUser struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Username  string             `bson:"username"`
		Password  string             `bson:"password"`
		CreatedAt time.Time          `bson:"createdAt"`
		UpdatedAt time.Time          `bson:"updatedAt"`
	}

	mongoDocument struct {
		ID          primitive.ObjectID `bson:"_id,omitempty"`
		UserID      primitive.ObjectID `bson:"userId"`
		Type        string             `bson:"type"`
		Link        string             `bson:"link"`
		Title       string             `bson:"title"`
		Description *string            `bson:"description,omitempty"`
		Tags        []string           `bson:"tags"`
		Sharable    bool               `bson:"sharable"`
		SharableID  *string            `bson:"sharableId,omitempty"`
		CreatedAt   time.Time          `bson:"createdAt"`
		UpdatedAt   time.Time          `bson:"updatedAt"`
	}

	mongoSocialLinks struct {
		XLink         *string `bson:"XLink,omitempty"`
		InstagramLink *string `bson:"InstagramLink,omitempty"`
		Whatsapp      *string `bson:"Whatsapp,omitempty"`
		MediumLink    *string `bson:"MediumLink,omitempty"`
	}

	mongoProfile struct {
		ID            primitive.ObjectID `bson:"_id,omitempty"`
		UserID        primitive.ObjectID `bson:"userId"`
		Username      string             `bson:"username"`
		Profession    *string            `bson:"profession,omitempty"`
		Avatar        *string            `bson:"avatar,omitempty"`
		SocialLinks   mongoSocialLinks   `bson:"socialLinks"`
		Bio           *string            `bson:"bio,omitempty"`
		PublicProfile bool               `bson:"publicProfile"`
		CreatedAt     time.Time          `bson:"createdAt"`
		UpdatedAt     time.Time          `bson:"updatedAt"`
	}

	MongoStore struct {
		client    *mongo.Client
		users     *mongo.Collection
		documents *mongo.Collection
		profiles  *mongo.Collection
		logger    *zap.SugaredLogger
	}
)

func NewMongoStore(ctx context.Context, uri, database string, l *zap.SugaredLogger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping mongo")
	}

	mdb := client.Database(database)
	s := &MongoStore{
		client:    client,
		users:     mdb.Collection(usersCollection),
		documents: mdb.Collection(documentsCollection),
		profiles:  mdb.Collection(profilesCollection),
		logger:    l,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	l.Infow("MongoDB connected", "database", database)
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}

	_, err = s.documents.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{
			Keys:    bson.D{{Key: "sharableId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return errors.Wrap(err, "create document indexes")
	}

	_, err = s.profiles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "username", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "create profile indexes")
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	doc := mongoUser{
		Username:  user.Username,
		Password:  user.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert user")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	*user = doc.toModel()
	return nil
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	doc := mongoUser{}
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, noDocuments(err, "find user")
	}
	u := doc.toModel()
	return &u, nil
}

func (s *MongoStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	owner, err := primitive.ObjectIDFromHex(doc.OwnerID)
	if err != nil {
		return errors.Wrap(err, "parse owner id")
	}
	now := time.Now().UTC()
	created := doc.CreatedAt
	if created.IsZero() {
		created = now
	}
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	md := mongoDocument{
		UserID:      owner,
		Type:        string(doc.Type),
		Link:        doc.Link,
		Title:       doc.Title,
		Description: doc.Description,
		Tags:        tags,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	res, err := s.documents.InsertOne(ctx, md)
	if err != nil {
		return errors.Wrap(err, "insert document")
	}
	md.ID = res.InsertedID.(primitive.ObjectID)
	*doc = md.toModel()
	return nil
}

func (s *MongoStore) ListDocuments(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]models.Document, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []models.Document{}, nil
	}
	q := bson.M{"userId": owner}
	if filter.SharableOnly {
		q["sharable"] = true
	}
	if filter.Tag != "" {
		q["tags"] = filter.Tag
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.documents.Find(ctx, q, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find documents")
	}
	rows := make([]mongoDocument, 0)
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode documents")
	}

	docs := make([]models.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toModel()
	}
	return docs, nil
}

func (s *MongoStore) FindDocument(ctx context.Context, ownerID, id string) (*models.Document, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.findDocument(ctx, filter)
}

func (s *MongoStore) UpdateDocument(ctx context.Context, ownerID, id string, patch models.DocumentPatch) (*models.Document, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	if patch.IsEmpty() {
		return s.findDocument(ctx, filter)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Link != nil {
		set["link"] = *patch.Link
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}

	doc := mongoDocument{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.documents.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, noDocuments(err, "update document")
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoStore) DeleteDocument(ctx context.Context, ownerID, id string) (*models.Document, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	doc := mongoDocument{}
	if err := s.documents.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return nil, noDocuments(err, "delete document")
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoStore) ShareDocument(ctx context.Context, ownerID, id, sharableID string) (*models.Document, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}

	guarded := bson.M{"_id": filter["_id"], "userId": filter["userId"], "sharable": false}
	update := bson.M{"$set": bson.M{
		"sharable":   true,
		"sharableId": sharableID,
		"updatedAt":  time.Now().UTC(),
	}}
	doc := mongoDocument{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.documents.FindOneAndUpdate(ctx, guarded, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// missing, foreign or already shared
		return s.findDocument(ctx, filter)
	}
	if err != nil {
		return nil, errors.Wrap(err, "share document")
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoStore) UnshareDocument(ctx context.Context, ownerID, id string) error {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return ErrNotFound
	}
	update := bson.M{
		"$set":   bson.M{"sharable": false, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"sharableId": ""},
	}
	res, err := s.documents.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrap(err, "unshare document")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindSharedDocument(ctx context.Context, sharableID string) (*models.Document, error) {
	return s.findDocument(ctx, bson.M{"sharableId": sharableID, "sharable": true})
}

func (s *MongoStore) findDocument(ctx context.Context, filter bson.M) (*models.Document, error) {
	doc := mongoDocument{}
	if err := s.documents.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, noDocuments(err, "find document")
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoStore) UpsertProfile(ctx context.Context, ownerID, username string, patch models.ProfilePatch) (*models.Profile, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	set := bson.M{"username": username, "updatedAt": now}
	onInsert := bson.M{"createdAt": now}
	if patch.Profession != nil {
		set["profession"] = *patch.Profession
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if patch.SocialLinks != nil {
		set["socialLinks"] = mongoSocialLinks{
			XLink:         patch.SocialLinks.X,
			InstagramLink: patch.SocialLinks.Instagram,
			Whatsapp:      patch.SocialLinks.Whatsapp,
			MediumLink:    patch.SocialLinks.Medium,
		}
	} else {
		onInsert["socialLinks"] = bson.M{}
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}
	if patch.PublicProfile != nil {
		set["publicProfile"] = *patch.PublicProfile
	} else {
		onInsert["publicProfile"] = false
	}

	filter := bson.M{"userId": owner}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	doc := mongoProfile{}
	err = s.profiles.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert inserted first; the retry takes the update path
		doc = mongoProfile{}
		err = s.profiles.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, errors.Wrap(err, "upsert profile")
	}
	p := doc.toModel()
	return &p, nil
}

func (s *MongoStore) FindProfile(ctx context.Context, ownerID string) (*models.Profile, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findProfile(ctx, bson.M{"userId": owner})
}

func (s *MongoStore) FindPublicProfile(ctx context.Context, username string) (*models.Profile, error) {
	return s.findProfile(ctx, bson.M{"username": username, "publicProfile": true})
}

func (s *MongoStore) findProfile(ctx context.Context, filter bson.M) (*models.Profile, error) {
	doc := mongoProfile{}
	if err := s.profiles.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, noDocuments(err, "find profile")
	}
	p := doc.toModel()
	return &p, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

////////

// ownedFilter builds the {_id, userId} filter; malformed ids can never match.
func ownedFilter(ownerID, id string) (bson.M, bool) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": owner}, true
}

func noDocuments(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return errors.Wrap(err, op)
}

func (u mongoUser) toModel() models.User {
	return models.User{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		PasswordHash: u.Password,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d mongoDocument) toModel() models.Document {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Document{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID.Hex(),
		Type:        models.DocumentType(d.Type),
		Link:        d.Link,
		Title:       d.Title,
		Description: d.Description,
		Tags:        tags,
		Sharable:    d.Sharable,
		SharableID:  d.SharableID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (p mongoProfile) toModel() models.Profile {
	return models.Profile{
		ID:         p.ID.Hex(),
		OwnerID:    p.UserID.Hex(),
		Username:   p.Username,
		Profession: p.Profession,
		Avatar:     p.Avatar,
		SocialLinks: models.SocialLinks{
			X:         p.SocialLinks.XLink,
			Instagram: p.SocialLinks.InstagramLink,
			Whatsapp:  p.SocialLinks.Whatsapp,
			Medium:    p.SocialLinks.MediumLink,
		},
		Bio:           p.Bio,
		PublicProfile: p.PublicProfile,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
