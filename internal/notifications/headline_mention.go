package notifications

import (
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// HeadlineMentionPolicy notifies a user named in a moment's headline at
// creation time. Headlines cannot be edited, so the same mention can never
// recur for one moment and no dedup query is needed.
type HeadlineMentionPolicy struct {
	basePolicy
	username string
}

func NewHeadlineMentionPolicy(momentAuthor *models.User, mentioned *models.User, momentID string) *HeadlineMentionPolicy {
	return &HeadlineMentionPolicy{
		basePolicy: basePolicy{
			sourceID:   momentAuthor.ID,
			targetID:   mentioned.ID,
			locale:     mentioned.Locale,
			subjectKey: momentID,
		},
		username: momentAuthor.Username,
	}
}

func (p *HeadlineMentionPolicy) Kind() models.NotificationKind { return models.KindHeadlineMention }

// ShouldNotify always records once the self-notification check passes.
func (p *HeadlineMentionPolicy) ShouldNotify(records repositories.NotificationRepository) (bool, error) {
	return p.CanNotify(), nil
}

func (p *HeadlineMentionPolicy) ShouldSendPush(records repositories.NotificationRepository, limit RateLimit) (bool, error) {
	return shouldSendPushDefault(p, records, limit)
}

func (p *HeadlineMentionPolicy) Message(tr *phrases.Translator) string {
	return tr.Translate(p.locale, phrases.HeadlineMentionNotification, map[string]interface{}{
		"Username": p.username,
	})
}

func (p *HeadlineMentionPolicy) AdditionalData() models.JSONMap {
	return models.JSONMap{
		"momentId": p.subjectKey,
	}
}
