package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketValidity is the lifetime of a ticket from its issue date
const TicketValidity = 30 * 24 * time.Hour

// BadgeCodeLength is the number of characters a badge code must have
const BadgeCodeLength = 10

// GameZone is a game-station category where scores are earned
type GameZone string

const (
	GameZoneFoot     GameZone = "foot"
	GameZoneBasket   GameZone = "basket"
	GameZoneTir      GameZone = "tir"
	GameZonePetanque GameZone = "petanque"
	GameZoneMinigolf GameZone = "minigolf"
)

// GameZones lists every known zone
var GameZones = []GameZone{GameZoneFoot, GameZoneBasket, GameZoneTir, GameZonePetanque, GameZoneMinigolf}

// IsValidGameZone reports whether zone is one of GameZones (exact match)
func IsValidGameZone(zone string) bool {
	for _, z := range GameZones {
		if string(z) == zone {
			return true
		}
	}
	return false
}

// Participant is the root aggregate owning tickets, scores, challenges and sanctions
type Participant struct {
	ID             string       `json:"id"`
	Pseudo         string       `json:"pseudo"`
	PhoneNumber    string       `json:"phoneNumber"`
	ProfilePicture *string      `json:"profilePicture"`
	CreatedAt      time.Time    `json:"createdAt"`
	Tickets        []Ticket     `json:"tickets"`
	Scores         []ScoreEntry `json:"scores"`
	Challenges     []Challenge  `json:"challenges"`
	Sanctions      []Sanction   `json:"sanctions"`
}

// NewParticipant creates a participant holding exactly one fresh ticket
func NewParticipant(pseudo, phoneNumber string, profilePicture *string, now time.Time) *Participant {
	return &Participant{
		ID:             uuid.NewString(),
		Pseudo:         pseudo,
		PhoneNumber:    phoneNumber,
		ProfilePicture: profilePicture,
		CreatedAt:      now,
		Tickets:        []Ticket{NewTicket(now)},
		Scores:         []ScoreEntry{},
		Challenges:     []Challenge{},
		Sanctions:      []Sanction{},
	}
}

// Clone returns a deep copy
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	c := *p
	if p.ProfilePicture != nil {
		pic := *p.ProfilePicture
		c.ProfilePicture = &pic
	}
	c.Tickets = make([]Ticket, len(p.Tickets))
	for i, t := range p.Tickets {
		c.Tickets[i] = t.clone()
	}
	c.Scores = append([]ScoreEntry{}, p.Scores...)
	c.Challenges = make([]Challenge, len(p.Challenges))
	for i, ch := range p.Challenges {
		c.Challenges[i] = ch.Clone()
	}
	c.Sanctions = append([]Sanction{}, p.Sanctions...)
	return &c
}

// FirstValidTicket returns the index of the first ticket, in insertion order, valid at now
func (p *Participant) FirstValidTicket(now time.Time) (int, bool) {
	for i, t := range p.Tickets {
		if t.IsValid(now) {
			return i, true
		}
	}
	return -1, false
}

// ChallengeIndex returns the position of the challenge with id
func (p *Participant) ChallengeIndex(id string) (int, bool) {
	for i, ch := range p.Challenges {
		if ch.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Ticket is a single-use, time-limited entitlement to enter a game zone
type Ticket struct {
	ID         string     `json:"id"`
	IssueDate  time.Time  `json:"issueDate"`
	ExpiryDate time.Time  `json:"expiryDate"`
	IsUsed     bool       `json:"isUsed"`
	UsedAt     *time.Time `json:"usedAt,omitempty"`
}

// NewTicket issues an unused ticket valid for TicketValidity from now
func NewTicket(now time.Time) Ticket {
	return Ticket{
		ID:         uuid.NewString(),
		IssueDate:  now,
		ExpiryDate: now.Add(TicketValidity),
		IsUsed:     false,
	}
}

// IsValid reports whether the ticket is unused and not expired at now
func (t Ticket) IsValid(now time.Time) bool {
	return !t.IsUsed && now.Before(t.ExpiryDate)
}

func (t Ticket) clone() Ticket {
	if t.UsedAt != nil {
		at := *t.UsedAt
		t.UsedAt = &at
	}
	return t
}

// ScoreEntry is an immutable score record
type ScoreEntry struct {
	ID       string    `json:"id"`
	GameZone string    `json:"gameZone"`
	Score    float64   `json:"score"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}

// NewScoreEntry records score for zone at location, dated now
func NewScoreEntry(zone string, score float64, location string, now time.Time) ScoreEntry {
	return ScoreEntry{
		ID:       uuid.NewString(),
		GameZone: zone,
		Score:    score,
		Location: location,
		Date:     now,
	}
}

// FilterScores keeps exact matches on zone and location (empty means any),
// most recent first. Entries with the same date keep their insertion order.
func FilterScores(scores []ScoreEntry, zone, location string) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(scores))
	for _, s := range scores {
		if zone != "" && s.GameZone != zone {
			continue
		}
		if location != "" && s.Location != location {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Challenge is a goal tied to a zone through its title
type Challenge struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Reward        string     `json:"reward"`
	Progress      float64    `json:"progress"`
	Target        float64    `json:"target"`
	Completed     bool       `json:"completed"`
	ExpiryDate    time.Time  `json:"expiryDate"`
	AssignedAt    time.Time  `json:"assignedAt"`
	RewardClaimed bool       `json:"rewardClaimed"`
	ClaimedAt     *time.Time `json:"claimedAt,omitempty"`
}

// NewChallenge creates a challenge with no progress
func NewChallenge(title, description, reward string, target float64, expiry, now time.Time) Challenge {
	return Challenge{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Reward:      reward,
		Target:      target,
		ExpiryDate:  expiry,
		AssignedAt:  now,
	}
}

// Clone returns a deep copy
func (c Challenge) Clone() Challenge {
	if c.ClaimedAt != nil {
		at := *c.ClaimedAt
		c.ClaimedAt = &at
	}
	return c
}

// ChallengeAppliesToZone binds a challenge to a zone when the title contains
// the zone name, ignoring case. Titles are free text, so "Basketball" also
// matches "basket".
func ChallengeAppliesToZone(title, zone string) bool {
	if zone == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(zone))
}

// ApplyScore adds score to every open challenge bound to zone and completes
// those reaching their target. Progress may overshoot the target.
// It mutates challenges in place and returns copies of the ones that changed.
func ApplyScore(challenges []Challenge, zone string, score float64) []Challenge {
	changed := []Challenge{}
	for i := range challenges {
		ch := &challenges[i]
		if ch.Completed || !ChallengeAppliesToZone(ch.Title, zone) {
			continue
		}
		ch.Progress += score
		if ch.Progress >= ch.Target {
			ch.Completed = true
		}
		changed = append(changed, ch.Clone())
	}
	return changed
}

// ReplayScores recomputes the progress of every open challenge from the score
// history, counting only scores recorded at or after the challenge was assigned.
// A challenge is raised when the replay exceeds its stored progress; progress is
// never lowered and completion is never undone. It mutates challenges in place
// and returns copies of the ones that changed.
func ReplayScores(challenges []Challenge, scores []ScoreEntry) []Challenge {
	history := append([]ScoreEntry{}, scores...)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})

	changed := []Challenge{}
	for i := range challenges {
		ch := &challenges[i]
		if ch.Completed {
			continue
		}

		var progress float64
		completed := false
		for _, s := range history {
			if s.Date.Before(ch.AssignedAt) || !ChallengeAppliesToZone(ch.Title, s.GameZone) {
				continue
			}
			progress += s.Score
			if progress >= ch.Target {
				completed = true
				break
			}
		}

		if progress <= ch.Progress {
			continue
		}
		ch.Progress = progress
		ch.Completed = completed
		changed = append(changed, ch.Clone())
	}
	return changed
}

// Sanction is an administrative penalty issued by another participant
type Sanction struct {
	ID      string    `json:"id"`
	Reason  string    `json:"reason"`
	Date    time.Time `json:"date"`
	AdminID string    `json:"adminId"`
}

// NewSanction records a sanction issued by adminID, dated now
func NewSanction(reason, adminID string, now time.Time) Sanction {
	return Sanction{
		ID:      uuid.NewString(),
		Reason:  reason,
		Date:    now,
		AdminID: adminID,
	}
}
