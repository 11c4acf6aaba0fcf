package telegram

import "encoding/json"

// apiResponse is the standard Bot API envelope.
type apiResponse struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result"`
	ErrorCode   int                 `json:"error_code"`
	Description string              `json:"description"`
	Parameters  *responseParameters `json:"parameters"`
}

type responseParameters struct {
	RetryAfter int `json:"retry_after"`
}

type giftList struct {
	Gifts []apiGift `json:"gifts"`
}

type apiGift struct {
	ID        int64 `json:"id"`
	StarCount int64 `json:"star_count"`
}

type sendGiftRequest struct {
	UserID int64 `json:"user_id"`
	GiftID int64 `json:"gift_id"`
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}
