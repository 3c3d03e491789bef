package domain

type TokenStatus string

const (
	TokenPending TokenStatus = "PENDING"
	TokenActive  TokenStatus = "ACTIVE"
	TokenExpired TokenStatus = "EXPIRED"
)

// Token is the admission ticket a user holds while waiting to enter the
// reservation flow. The expiry of an ACTIVE token lives in the active set,
// not on the struct; the metadata record only carries identity and status.
type Token struct {
	ID     int64
	UserID int64
	Status TokenStatus
}
