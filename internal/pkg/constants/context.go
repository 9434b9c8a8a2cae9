package constants

type ctxKey string

const (
	CtxKeyRequestID ctxKey = "request_id"
	CtxKeyCountry   ctxKey = "country"
)

const HeaderRequestID = "X-Request-ID"
