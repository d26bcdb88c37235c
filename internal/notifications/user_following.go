package notifications

import (
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// UserFollowingPolicy notifies a user that someone started following them.
// There is no subject: one follow notification per follower, ever, while the
// earlier one exists.
type UserFollowingPolicy struct {
	basePolicy
	username string
}

func NewUserFollowingPolicy(follower *models.User, followedID uint) *UserFollowingPolicy {
	return &UserFollowingPolicy{
		basePolicy: basePolicy{
			sourceID: follower.ID,
			targetID: followedID,
			locale:   follower.Locale,
		},
		username: follower.Username,
	}
}

func (p *UserFollowingPolicy) Kind() models.NotificationKind { return models.KindUserFollowing }

func (p *UserFollowingPolicy) ShouldNotify(records repositories.NotificationRepository) (bool, error) {
	return shouldNotifyDefault(p, records)
}

func (p *UserFollowingPolicy) ShouldSendPush(records repositories.NotificationRepository, limit RateLimit) (bool, error) {
	return shouldSendPushDefault(p, records, limit)
}

func (p *UserFollowingPolicy) Message(tr *phrases.Translator) string {
	return tr.Translate(p.locale, phrases.UserFollowingNotification, map[string]interface{}{
		"Username": p.username,
	})
}

func (p *UserFollowingPolicy) AdditionalData() models.JSONMap {
	return models.JSONMap{}
}
