package mongodb

const (
	RefreshTokensCollection = "refresh_tokens"
	RevokedJtisCollection   = "revoked_jtis"
)
