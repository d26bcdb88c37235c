package notifications

import (
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// momentImageCDN serves the resized moment image variants referenced from
// push payloads.
const momentImageCDN = "https://d1m9cftgf9ypai.cloudfront.net/dev/momentimages/"

// MomentLikePolicy notifies a moment's author that someone liked it. Dedup
// and throttling are scoped per moment, so likes on a second moment by the
// same user still notify.
type MomentLikePolicy struct {
	basePolicy
	username string
	imageKey string
}

func NewMomentLikePolicy(actor *models.User, moment *models.Moment) *MomentLikePolicy {
	return &MomentLikePolicy{
		basePolicy: basePolicy{
			sourceID:   actor.ID,
			targetID:   moment.UserID,
			locale:     actor.Locale,
			subjectKey: moment.SubjectKey(),
		},
		username: actor.Username,
		imageKey: moment.ImageKey,
	}
}

func (p *MomentLikePolicy) Kind() models.NotificationKind { return models.KindMomentLike }

func (p *MomentLikePolicy) ShouldNotify(records repositories.NotificationRepository) (bool, error) {
	return shouldNotifyDefault(p, records)
}

func (p *MomentLikePolicy) ShouldSendPush(records repositories.NotificationRepository, limit RateLimit) (bool, error) {
	return shouldSendPushDefault(p, records, limit)
}

func (p *MomentLikePolicy) Message(tr *phrases.Translator) string {
	return tr.Translate(p.locale, phrases.MomentLikeNotification, map[string]interface{}{
		"Username": p.username,
	})
}

func (p *MomentLikePolicy) AdditionalData() models.JSONMap {
	return models.JSONMap{
		"momentId":     p.subjectKey,
		"imageUrlTiny": momentImageCDN + p.imageKey + "_tiny",
	}
}
