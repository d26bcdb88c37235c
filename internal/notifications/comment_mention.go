package notifications

import (
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// CommentMentionPolicy notifies a user mentioned in a comment. Scoped per
// moment so a user tagged again in a reply thread is not alerted for every
// follow-up comment.
type CommentMentionPolicy struct {
	basePolicy
	username  string
	commentID uint
}

func NewCommentMentionPolicy(commentAuthor *models.User, mentioned *models.User, momentID string, commentID uint) *CommentMentionPolicy {
	return &CommentMentionPolicy{
		basePolicy: basePolicy{
			sourceID:   commentAuthor.ID,
			targetID:   mentioned.ID,
			locale:     mentioned.Locale,
			subjectKey: momentID,
		},
		username:  commentAuthor.Username,
		commentID: commentID,
	}
}

func (p *CommentMentionPolicy) Kind() models.NotificationKind { return models.KindCommentMention }

func (p *CommentMentionPolicy) ShouldNotify(records repositories.NotificationRepository) (bool, error) {
	return shouldNotifyDefault(p, records)
}

func (p *CommentMentionPolicy) ShouldSendPush(records repositories.NotificationRepository, limit RateLimit) (bool, error) {
	return shouldSendPushDefault(p, records, limit)
}

func (p *CommentMentionPolicy) Message(tr *phrases.Translator) string {
	return tr.Translate(p.locale, phrases.CommentMentionNotification, map[string]interface{}{
		"Username": p.username,
	})
}

func (p *CommentMentionPolicy) AdditionalData() models.JSONMap {
	return models.JSONMap{
		"momentId":  p.subjectKey,
		"commentId": p.commentID,
	}
}
