package dynamo

// DynamoDB attribute and index names used across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldUpdatedAt        = "updated_at"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldEmail            = "email"
	fieldToken            = "token"
	fieldTokenID          = "token_id"
	fieldUserID           = "user_id"
	fieldSessionID        = "session_id"
	fieldConfirmationID   = "confirmation_id"
	fieldCreatedAt        = "created_at"
	fieldPurgeAt          = "purge_at"

	indexEmail         = "email-index"
	indexEmailCreated  = "email-created_at-index"
	indexToken         = "token-index"
	indexUserID        = "user_id-index"
	indexUserIDCreated = "user_id-created_at-index"
	indexRefreshToken  = "refresh_token-index"
)
