package notifications

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

func testUser(id uint, username, locale string) *models.User {
	return &models.User{ID: id, Username: username, Locale: locale}
}

func testMoment(authorID uint) *models.Moment {
	return &models.Moment{ID: primitive.NewObjectID(), UserID: authorID, Headline: "game day"}
}

func TestCanNotifyRejectsSelf(t *testing.T) {
	t.Parallel()
	actor := testUser(1, "alice", "en")
	moment := testMoment(1)

	p := NewMomentLikePolicy(actor, moment)
	if p.CanNotify() {
		t.Fatal("liking your own moment must not notify")
	}

	ok, err := p.ShouldNotify(newMemRecordStore())
	if err != nil {
		t.Fatalf("ShouldNotify error: %v", err)
	}
	if ok {
		t.Fatal("ShouldNotify must be false for self action")
	}
}

func TestShouldNotifyDeduplicates(t *testing.T) {
	t.Parallel()
	actor := testUser(1, "alice", "en")
	moment := testMoment(2)
	records := newMemRecordStore()

	p := NewMomentLikePolicy(actor, moment)
	ok, err := p.ShouldNotify(records)
	if err != nil || !ok {
		t.Fatalf("first ShouldNotify = %v, %v; want true, nil", ok, err)
	}

	records.Create(&models.Notification{
		SourceID:   p.SourceID(),
		TargetID:   p.TargetID(),
		Kind:       p.Kind(),
		SubjectKey: p.SubjectKey(),
	})

	ok, err = p.ShouldNotify(records)
	if err != nil {
		t.Fatalf("second ShouldNotify error: %v", err)
	}
	if ok {
		t.Fatal("duplicate like must not notify again")
	}
}

func TestShouldNotifyScopedBySubject(t *testing.T) {
	t.Parallel()
	actor := testUser(1, "alice", "en")
	records := newMemRecordStore()

	first := NewMomentLikePolicy(actor, testMoment(2))
	records.Create(&models.Notification{
		SourceID:   first.SourceID(),
		TargetID:   first.TargetID(),
		Kind:       first.Kind(),
		SubjectKey: first.SubjectKey(),
	})

	// Same actor and recipient but a different moment notifies again.
	other := NewMomentLikePolicy(actor, testMoment(2))
	ok, err := other.ShouldNotify(records)
	if err != nil {
		t.Fatalf("ShouldNotify error: %v", err)
	}
	if !ok {
		t.Fatal("like on a different moment must notify")
	}
}

func TestUserFollowingDedupIgnoresSubject(t *testing.T) {
	t.Parallel()
	follower := testUser(1, "alice", "en")
	records := newMemRecordStore()

	p := NewUserFollowingPolicy(follower, 2)
	if p.SubjectKey() != "" {
		t.Fatalf("follow has no subject, got %q", p.SubjectKey())
	}

	records.Create(&models.Notification{
		SourceID: 1,
		TargetID: 2,
		Kind:     models.KindUserFollowing,
	})

	ok, err := p.ShouldNotify(records)
	if err != nil {
		t.Fatalf("ShouldNotify error: %v", err)
	}
	if ok {
		t.Fatal("repeat follow must not notify while the first record exists")
	}
}

func TestHeadlineMentionAlwaysNotifies(t *testing.T) {
	t.Parallel()
	author := testUser(1, "alice", "en")
	mentioned := testUser(2, "bob", "en")
	records := newMemRecordStore()

	p := NewHeadlineMentionPolicy(author, mentioned, primitive.NewObjectID().Hex())
	records.Create(&models.Notification{
		SourceID:   p.SourceID(),
		TargetID:   p.TargetID(),
		Kind:       p.Kind(),
		SubjectKey: p.SubjectKey(),
	})

	// No dedup query: a matching prior record does not suppress it.
	ok, err := p.ShouldNotify(records)
	if err != nil {
		t.Fatalf("ShouldNotify error: %v", err)
	}
	if !ok {
		t.Fatal("headline mention must always notify")
	}

	self := NewHeadlineMentionPolicy(author, author, primitive.NewObjectID().Hex())
	ok, err = self.ShouldNotify(records)
	if err != nil || ok {
		t.Fatalf("self mention: got %v, %v; want false, nil", ok, err)
	}
}

func TestShouldSendPushThreshold(t *testing.T) {
	t.Parallel()
	limit := RateLimit{Threshold: 5, Window: 10 * time.Minute}
	records := newMemRecordStore()
	mentioned := testUser(2, "bob", "en")
	subject := primitive.NewObjectID().Hex()

	// The record for the current notification is written before the throttle
	// check, so the push is allowed while the count stays at or below the
	// threshold.
	for i := 0; i < 8; i++ {
		p := NewHeadlineMentionPolicy(testUser(uint(10+i), "u", "en"), mentioned, subject)
		records.Create(&models.Notification{
			SourceID:   p.SourceID(),
			TargetID:   p.TargetID(),
			Kind:       p.Kind(),
			SubjectKey: p.SubjectKey(),
		})
		ok, err := p.ShouldSendPush(records, limit)
		if err != nil {
			t.Fatalf("ShouldSendPush error: %v", err)
		}
		want := i < limit.Threshold
		if ok != want {
			t.Fatalf("notification %d: ShouldSendPush = %v, want %v", i+1, ok, want)
		}
	}
}

func TestShouldSendPushIgnoresRecordsOutsideWindow(t *testing.T) {
	t.Parallel()
	limit := RateLimit{Threshold: 1, Window: 10 * time.Minute}
	records := newMemRecordStore()
	mentioned := testUser(2, "bob", "en")
	subject := primitive.NewObjectID().Hex()

	// Old unacknowledged records do not count against the throttle.
	records.Create(&models.Notification{
		SourceID:   1,
		TargetID:   2,
		Kind:       models.KindHeadlineMention,
		SubjectKey: subject,
		CreatedAt:  time.Now().Add(-time.Hour),
	})

	p := NewHeadlineMentionPolicy(testUser(1, "alice", "en"), mentioned, subject)
	records.Create(&models.Notification{
		SourceID:   p.SourceID(),
		TargetID:   p.TargetID(),
		Kind:       p.Kind(),
		SubjectKey: p.SubjectKey(),
	})

	ok, err := p.ShouldSendPush(records, limit)
	if err != nil {
		t.Fatalf("ShouldSendPush error: %v", err)
	}
	if !ok {
		t.Fatal("records outside the window must not throttle the push")
	}
}

func TestPolicyMessagesLocalized(t *testing.T) {
	t.Parallel()
	tr := phrases.NewTranslator()
	alice := testUser(1, "alice", "en")
	bobES := testUser(2, "bob", "es")

	follow := NewUserFollowingPolicy(alice, 2)
	if got := follow.Message(tr); got != "alice started following you" {
		t.Fatalf("follow message = %q", got)
	}

	mention := NewCommentMentionPolicy(alice, bobES, "m1", 7)
	if got := mention.Message(tr); got != "alice te mencionó en un comentario" {
		t.Fatalf("mention message = %q", got)
	}
}

func TestMomentLikeAdditionalData(t *testing.T) {
	t.Parallel()
	actor := testUser(1, "alice", "en")
	moment := testMoment(2)
	moment.ImageKey = "abc123"

	p := NewMomentLikePolicy(actor, moment)
	data := p.AdditionalData()
	if data["momentId"] != moment.SubjectKey() {
		t.Fatalf("momentId = %v, want %s", data["momentId"], moment.SubjectKey())
	}
	url, _ := data["imageUrlTiny"].(string)
	if url == "" {
		t.Fatal("expected imageUrlTiny for a moment with an image")
	}
}
