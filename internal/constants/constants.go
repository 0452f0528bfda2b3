package constants

const (
	//分頁
	DefaultPagingSize int = 10
	DefaultPaging     int = 1
)

type ContextKey string

const (
	CartOwnerKey ContextKey = "cart_owner"
)

// 匿名購物車的 session 識別，由前端產生帶在 header
const SessionKeyHeader = "X-Session-Key"

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)
