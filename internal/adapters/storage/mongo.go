package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	chatCollection  = "chat_messages"
	usersCollection = "users"
)

type chatMessageDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ClubID      string             `bson:"clubId"`
	SenderID    string             `bson:"senderId"`
	Content     string             `bson:"content"`
	MessageType string             `bson:"messageType"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d chatMessageDoc) toDomain() domain.ChatMessage {
	return domain.ChatMessage{
		ID:          d.ID.Hex(),
		ClubID:      d.ClubID,
		SenderID:    d.SenderID,
		Content:     d.Content,
		MessageType: domain.MessageType(d.MessageType),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// newChatMessageDoc stamps a draft; mongo keeps milliseconds.
func newChatMessageDoc(draft domain.ChatDraft, now time.Time) chatMessageDoc {
	now = now.UTC().Truncate(time.Millisecond)
	return chatMessageDoc{
		ClubID:      draft.ClubID,
		SenderID:    draft.SenderID,
		Content:     draft.Content,
		MessageType: string(draft.MessageType),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// listMessagesQuery selects a club's newest messages first.
func listMessagesQuery(clubID string, limit int) (bson.M, *options.FindOptions) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))
	return bson.M{"clubId": clubID}, opts
}

// userDoc follows the users collection written by the club web app.
type userDoc struct {
	ID              string `bson:"id"`
	Email           string `bson:"email,omitempty"`
	FirstName       string `bson:"firstName,omitempty"`
	LastName        string `bson:"lastName,omitempty"`
	ProfileImageURL string `bson:"profileImageUrl,omitempty"`
}

func (d userDoc) toDomain() *domain.User {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		name = d.Email
	}
	return &domain.User{ID: d.ID, DisplayName: name, AvatarURL: d.ProfileImageURL}
}

// Mongo stores chat history in chat_messages and reads users.
type Mongo struct {
	client *mongo.Client
	chat   *mongo.Collection
	users  *mongo.Collection
}

var (
	_ core.ChatStore     = (*Mongo)(nil)
	_ core.UserDirectory = (*Mongo)(nil)
)

// ConnectMongo dials and pings uri, then makes sure the history index exists.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	db := client.Database(database)
	m := &Mongo{client: client, chat: db.Collection(chatCollection), users: db.Collection(usersCollection)}

	_, err = m.chat.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "clubId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}
	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) AppendChatMessage(ctx context.Context, draft domain.ChatDraft) (domain.ChatMessage, error) {
	if draft.MessageType == "" {
		draft.MessageType = domain.MessageText
	}
	if err := draft.Validate(); err != nil {
		return domain.ChatMessage{}, err
	}
	doc := newChatMessageDoc(draft, time.Now())
	res, err := m.chat.InsertOne(ctx, doc)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("mongo: insert message: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.ChatMessage{}, fmt.Errorf("mongo: unexpected inserted id %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (m *Mongo) ListChatMessages(ctx context.Context, clubID string, limit int) ([]domain.ChatMessage, error) {
	filter, opts := listMessagesQuery(clubID, limit)
	cur, err := m.chat.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find messages: %w", err)
	}
	var docs []chatMessageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode messages: %w", err)
	}
	out := make([]domain.ChatMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (m *Mongo) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var doc userDoc
	err := m.users.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find user: %w", err)
	}
	return doc.toDomain(), nil
}
