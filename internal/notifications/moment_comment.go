package notifications

import (
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// MomentCommentPolicy notifies a moment's author that someone commented on
// it. One notification per commenter per moment; repeat comments by the same
// user on the same moment stay silent while the first is unacknowledged.
type MomentCommentPolicy struct {
	basePolicy
	username  string
	commentID uint
}

func NewMomentCommentPolicy(commentAuthor *models.User, momentAuthor *models.User, momentID string, commentID uint) *MomentCommentPolicy {
	return &MomentCommentPolicy{
		basePolicy: basePolicy{
			sourceID:   commentAuthor.ID,
			targetID:   momentAuthor.ID,
			locale:     momentAuthor.Locale,
			subjectKey: momentID,
		},
		username:  commentAuthor.Username,
		commentID: commentID,
	}
}

func (p *MomentCommentPolicy) Kind() models.NotificationKind { return models.KindMomentComment }

func (p *MomentCommentPolicy) ShouldNotify(records repositories.NotificationRepository) (bool, error) {
	return shouldNotifyDefault(p, records)
}

func (p *MomentCommentPolicy) ShouldSendPush(records repositories.NotificationRepository, limit RateLimit) (bool, error) {
	return shouldSendPushDefault(p, records, limit)
}

func (p *MomentCommentPolicy) Message(tr *phrases.Translator) string {
	return tr.Translate(p.locale, phrases.MomentCommentNotification, map[string]interface{}{
		"Username": p.username,
	})
}

func (p *MomentCommentPolicy) AdditionalData() models.JSONMap {
	return models.JSONMap{
		"momentId":  p.subjectKey,
		"commentId": p.commentID,
	}
}
