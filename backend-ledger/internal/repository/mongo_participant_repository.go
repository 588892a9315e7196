package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/AlTattoo/top-challenges/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const participantsCollection = "participants"

type participantDocument struct {
	ID             string              `bson:"_id"`
	Pseudo         string              `bson:"pseudo"`
	PhoneNumber    string              `bson:"phoneNumber"`
	ProfilePicture *string             `bson:"profilePicture,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt"`
	Tickets        []ticketDocument    `bson:"tickets"`
	Scores         []scoreDocument     `bson:"scores"`
	Challenges     []challengeDocument `bson:"challenges"`
	Sanctions      []sanctionDocument  `bson:"sanctions"`
}

type ticketDocument struct {
	ID         string     `bson:"id"`
	IssueDate  time.Time  `bson:"issueDate"`
	ExpiryDate time.Time  `bson:"expiryDate"`
	IsUsed     bool       `bson:"isUsed"`
	UsedAt     *time.Time `bson:"usedAt,omitempty"`
}

type scoreDocument struct {
	ID       string    `bson:"id"`
	GameZone string    `bson:"gameZone"`
	Score    float64   `bson:"score"`
	Location string    `bson:"location"`
	Date     time.Time `bson:"date"`
}

type challengeDocument struct {
	ID            string     `bson:"id"`
	Title         string     `bson:"title"`
	Description   string     `bson:"description"`
	Reward        string     `bson:"reward"`
	Progress      float64    `bson:"progress"`
	Target        float64    `bson:"target"`
	Completed     bool       `bson:"completed"`
	ExpiryDate    time.Time  `bson:"expiryDate"`
	AssignedAt    time.Time  `bson:"assignedAt"`
	RewardClaimed bool       `bson:"rewardClaimed"`
	ClaimedAt     *time.Time `bson:"claimedAt,omitempty"`
}

type sanctionDocument struct {
	ID      string    `bson:"id"`
	Reason  string    `bson:"reason"`
	Date    time.Time `bson:"date"`
	AdminID string    `bson:"adminId"`
}

// MongoParticipantRepository implements ParticipantRepository with one
// document per participant, collections embedded as arrays
type MongoParticipantRepository struct {
	client *mongodb.Client
	coll   *mongo.Collection
}

// NewMongoParticipantRepository creates a new MongoDB participant repository
func NewMongoParticipantRepository(client *mongodb.Client) *MongoParticipantRepository {
	return &MongoParticipantRepository{
		client: client,
		coll:   client.Database().Collection(participantsCollection),
	}
}

// EnsureIndexes creates the unique pseudo and phone number indexes
func (r *MongoParticipantRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pseudo", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phoneNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create participant indexes: %w", err)
	}
	return nil
}

// Create inserts the participant document
func (r *MongoParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	_, err := r.coll.InsertOne(ctx, toParticipantDocument(participant))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrParticipantExists
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// GetByID loads the participant document
func (r *MongoParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByPseudoOrPhone loads any participant holding pseudo or phoneNumber
func (r *MongoParticipantRepository) FindByPseudoOrPhone(ctx context.Context, pseudo, phoneNumber string) (*domain.Participant, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"pseudo": pseudo},
		bson.M{"phoneNumber": phoneNumber},
	}})
}

// Exists reports whether the participant exists
func (r *MongoParticipantRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return n > 0, nil
}

// ConsumeTicket flips isUsed on the matched array element only while it is
// unused and unexpired
func (r *MongoParticipantRepository) ConsumeTicket(ctx context.Context, participantID, ticketID string, now time.Time) error {
	filter := bson.M{
		"_id": participantID,
		"tickets": bson.M{"$elemMatch": bson.M{
			"id":         ticketID,
			"isUsed":     false,
			"expiryDate": bson.M{"$gt": now},
		}},
	}
	update := bson.M{"$set": bson.M{
		"tickets.$.isUsed": true,
		"tickets.$.usedAt": now,
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to consume ticket: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	return ErrTicketUnavailable
}

// AppendScore appends a score entry
func (r *MongoParticipantRepository) AppendScore(ctx context.Context, participantID string, score domain.ScoreEntry) error {
	return r.push(ctx, participantID, "scores", scoreDocument(score))
}

// UpdateChallenges stores progress and completion of the given challenges.
// Completion only moves from false to true.
func (r *MongoParticipantRepository) UpdateChallenges(ctx context.Context, participantID string, challenges []domain.Challenge) error {
	if err := r.ensureExists(ctx, participantID); err != nil {
		return err
	}
	if len(challenges) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(challenges))
	for _, ch := range challenges {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": participantID, "challenges.id": ch.ID}).
			SetUpdate(bson.M{
				"$set": bson.M{"challenges.$.progress": ch.Progress},
				"$max": bson.M{"challenges.$.completed": ch.Completed},
			}))
	}
	if _, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to update challenges: %w", err)
	}
	return nil
}

// AddChallenge appends a challenge
func (r *MongoParticipantRepository) AddChallenge(ctx context.Context, participantID string, challenge domain.Challenge) error {
	return r.push(ctx, participantID, "challenges", challengeDocument(challenge))
}

// ClaimChallengeReward marks the reward of a completed challenge claimed
func (r *MongoParticipantRepository) ClaimChallengeReward(ctx context.Context, participantID, challengeID string, at time.Time) error {
	filter := bson.M{
		"_id": participantID,
		"challenges": bson.M{"$elemMatch": bson.M{
			"id":            challengeID,
			"completed":     true,
			"rewardClaimed": false,
		}},
	}
	update := bson.M{"$set": bson.M{
		"challenges.$.rewardClaimed": true,
		"challenges.$.claimedAt":     at,
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim reward: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	p, err := r.GetByID(ctx, participantID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrParticipantNotFound
	}
	i, ok := p.ChallengeIndex(challengeID)
	if !ok {
		return domain.ErrChallengeNotFound
	}
	if p.Challenges[i].RewardClaimed {
		return domain.ErrRewardAlreadyClaimed
	}
	return domain.ErrChallengeNotCompleted
}

// AppendSanction appends a sanction
func (r *MongoParticipantRepository) AppendSanction(ctx context.Context, participantID string, sanction domain.Sanction) error {
	return r.push(ctx, participantID, "sanctions", sanctionDocument(sanction))
}

// HealthCheck pings the primary
func (r *MongoParticipantRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

func (r *MongoParticipantRepository) push(ctx context.Context, participantID, field string, value interface{}) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": participantID},
		bson.M{"$push": bson.M{field: value}},
	)
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", field, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *MongoParticipantRepository) ensureExists(ctx context.Context, participantID string) error {
	exists, err := r.Exists(ctx, participantID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *MongoParticipantRepository) findOne(ctx context.Context, filter interface{}) (*domain.Participant, error) {
	var doc participantDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return doc.toDomain(), nil
}

func toParticipantDocument(p *domain.Participant) participantDocument {
	doc := participantDocument{
		ID:             p.ID,
		Pseudo:         p.Pseudo,
		PhoneNumber:    p.PhoneNumber,
		ProfilePicture: p.ProfilePicture,
		CreatedAt:      p.CreatedAt,
		Tickets:        make([]ticketDocument, 0, len(p.Tickets)),
		Scores:         make([]scoreDocument, 0, len(p.Scores)),
		Challenges:     make([]challengeDocument, 0, len(p.Challenges)),
		Sanctions:      make([]sanctionDocument, 0, len(p.Sanctions)),
	}
	for _, t := range p.Tickets {
		doc.Tickets = append(doc.Tickets, ticketDocument(t))
	}
	for _, s := range p.Scores {
		doc.Scores = append(doc.Scores, scoreDocument(s))
	}
	for _, ch := range p.Challenges {
		doc.Challenges = append(doc.Challenges, challengeDocument(ch))
	}
	for _, s := range p.Sanctions {
		doc.Sanctions = append(doc.Sanctions, sanctionDocument(s))
	}
	return doc
}

// toDomain keeps every time in UTC
func (d participantDocument) toDomain() *domain.Participant {
	p := &domain.Participant{
		ID:             d.ID,
		Pseudo:         d.Pseudo,
		PhoneNumber:    d.PhoneNumber,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      d.CreatedAt.UTC(),
		Tickets:        make([]domain.Ticket, 0, len(d.Tickets)),
		Scores:         make([]domain.ScoreEntry, 0, len(d.Scores)),
		Challenges:     make([]domain.Challenge, 0, len(d.Challenges)),
		Sanctions:      make([]domain.Sanction, 0, len(d.Sanctions)),
	}
	for _, t := range d.Tickets {
		t.IssueDate, t.ExpiryDate, t.UsedAt = t.IssueDate.UTC(), t.ExpiryDate.UTC(), utcPtr(t.UsedAt)
		p.Tickets = append(p.Tickets, domain.Ticket(t))
	}
	for _, s := range d.Scores {
		s.Date = s.Date.UTC()
		p.Scores = append(p.Scores, domain.ScoreEntry(s))
	}
	for _, ch := range d.Challenges {
		ch.ExpiryDate, ch.AssignedAt, ch.ClaimedAt = ch.ExpiryDate.UTC(), ch.AssignedAt.UTC(), utcPtr(ch.ClaimedAt)
		p.Challenges = append(p.Challenges, domain.Challenge(ch))
	}
	for _, s := range d.Sanctions {
		s.Date = s.Date.UTC()
		p.Sanctions = append(p.Sanctions, domain.Sanction(s))
	}
	return p
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
