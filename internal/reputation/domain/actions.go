package domain

// Action names a rewardable event.
type Action string

const (
	// Directly reportable actions.
	ActionCreatePost      Action = "create_post"
	ActionCreateComment   Action = "create_comment"
	ActionCompleteLesson  Action = "complete_lesson"
	ActionPublishResearch Action = "publish_research"

	// Vote-driven adjustments; applied by the vote service, never
	// reportable through ApplyAction.
	ActionReceiveUpvote Action = "receive_upvote"
	ActionUpvoteRevoked Action = "upvote_revoked"

	// Debit applied by the shop service.
	ActionShopPurchase Action = "shop_purchase"
)

// Delta is the (karma, reward) award attached to an action.
type Delta struct {
	Karma  int64
	Reward int64
}

var actionDeltas = map[Action]Delta{
	ActionCreatePost:      {Karma: 5},
	ActionCreateComment:   {Karma: 2},
	ActionCompleteLesson:  {Karma: 10, Reward: 5},
	ActionPublishResearch: {Karma: 50, Reward: 20},
}

// DeltaFor returns the award for a reportable action. Vote-driven actions
// are excluded; they carry their deltas through the vote state machine.
func DeltaFor(action Action) (Delta, bool) {
	d, ok := actionDeltas[action]
	return d, ok
}
