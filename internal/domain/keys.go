package domain

type CtxKey string

const (
	KeyWalletAddress CtxKey = "WalletAddress"
	KeyTokenKind     CtxKey = "TokenKind"
	KeyRequestID     CtxKey = "RequestID"
)

// Token kinds issued by the auth layer
const (
	// TokenKindSession is bound to the process wallet session and may sign transactions
	TokenKindSession = "session"
	// TokenKindViewer proves ownership of an external address; read-only
	TokenKindViewer = "viewer"
)
