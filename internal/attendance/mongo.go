package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoClass struct {
	ClassID  string    `bson:"classId"`
	Name     string    `bson:"name"`
	Teacher  string    `bson:"teacher"`
	Students []Student `bson:"students"`
}

type mongoRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ClassID         string             `bson:"classId"`
	ClassName       string             `bson:"className"`
	Date            time.Time          `bson:"date"`
	StudentStatuses []Entry            `bson:"studentStatuses"`
	RecordedBy      string             `bson:"recordedBy"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

type mongoUser struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"createdAt"`
}

// MongoRepository keeps users, classes and attendances as documents.
type MongoRepository struct {
	classes     *mongo.Collection
	attendances *mongo.Collection
	users       *mongo.Collection
	timeout     time.Duration
}

// NewMongoRepository binds the repository to a database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		classes:     db.Collection("classes"),
		attendances: db.Collection("attendances"),
		users:       db.Collection("users"),
		timeout:     5 * time.Second,
	}
}

// EnsureIndexes creates the unique and ordering indexes the queries rely on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.classes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "classId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return storageErr("index classes", err)
	}
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return storageErr("index users", err)
	}
	if _, err := r.attendances.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "classId", Value: 1}, {Key: "date", Value: -1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return storageErr("index attendances", err)
	}
	return nil
}

// Class returns a class document by classId.
func (r *MongoRepository) Class(ctx context.Context, classID string) (Class, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoClass
	err := r.classes.FindOne(ctx, bson.M{"classId": classID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Class{}, fmt.Errorf("%w: %q", ErrClassNotFound, classID)
	}
	if err != nil {
		return Class{}, storageErr("get class", err)
	}
	return doc.class(), nil
}

// Classes returns every class ordered by classId.
func (r *MongoRepository) Classes(ctx context.Context) ([]Class, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.classes.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "classId", Value: 1}}))
	if err != nil {
		return nil, storageErr("list classes", err)
	}
	defer cursor.Close(ctx)

	var out []Class
	for cursor.Next(ctx) {
		var doc mongoClass
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode class", err)
		}
		out = append(out, doc.class())
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list classes", err)
	}
	return out, nil
}

func (d mongoClass) class() Class {
	students := d.Students
	if students == nil {
		students = []Student{}
	}
	return Class{ID: d.ClassID, Name: d.Name, TeacherID: d.Teacher, Students: students}
}

// PutClass upserts a class document by classId.
func (r *MongoRepository) PutClass(ctx context.Context, cls Class) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := mongoClass{ClassID: cls.ID, Name: cls.Name, Teacher: cls.TeacherID, Students: cls.Students}
	_, err := r.classes.ReplaceOne(ctx, bson.M{"classId": cls.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr("put class", err)
	}
	return nil
}

// InsertRecord writes a new attendance document and returns its ObjectID hex.
func (r *MongoRepository) InsertRecord(ctx context.Context, rec Record) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := mongoRecord{
		ID:              primitive.NewObjectID(),
		ClassID:         rec.ClassID,
		ClassName:       rec.ClassName,
		Date:            Day(rec.Date),
		StudentStatuses: rec.Entries,
		RecordedBy:      rec.RecordedBy,
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := r.attendances.InsertOne(ctx, doc); err != nil {
		return "", storageErr("insert record", err)
	}
	return doc.ID.Hex(), nil
}

// LatestRecord sorts by date, then insertion time and ObjectID for same-day ties.
func (r *MongoRepository) LatestRecord(ctx context.Context, classID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	var doc mongoRecord
	err := r.attendances.FindOne(ctx, bson.M{"classId": classID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, fmt.Errorf("%w for class %q", ErrRecordNotFound, classID)
	}
	if err != nil {
		return Record{}, storageErr("latest record", err)
	}
	return Record{
		ID:         doc.ID.Hex(),
		ClassID:    doc.ClassID,
		ClassName:  doc.ClassName,
		Date:       Day(doc.Date),
		Entries:    doc.StudentStatuses,
		RecordedBy: doc.RecordedBy,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

// User returns a user by id.
func (r *MongoRepository) User(ctx context.Context, id string) (User, error) {
	return r.findUser(ctx, bson.M{"_id": id}, id)
}

// UserByEmail returns a user by case-insensitive email.
func (r *MongoRepository) UserByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findUser(ctx, bson.M{"email": email}, email)
}

func (r *MongoRepository) findUser(ctx context.Context, filter bson.M, key string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoUser
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, key)
	}
	if err != nil {
		return User{}, storageErr("get user", err)
	}
	return User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		Role:         doc.Role,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// CreateUser inserts a user; a duplicate email yields ErrEmailTaken.
func (r *MongoRepository) CreateUser(ctx context.Context, u User) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.users.InsertOne(ctx, mongoUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, storageErr("create user", err)
	}
	return u, nil
}
