package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest         TraceSpanName = "http_request"
	SpanLoggerMiddleware    TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware  TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware      TraceSpanName = "cors_middleware"
	SpanResponseMiddleware  TraceSpanName = "response_middleware"
	SpanAuthMiddleware      TraceSpanName = "authenticate_middleware"
	SpanRateLimitMiddleware TraceSpanName = "ratelimit_middleware"
	SpanUserMiddleware      TraceSpanName = "user_middleware"
	SpanAccessMiddleware    TraceSpanName = "access_middleware"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal    MetricName = "requests_total"
	MetricHttpRequestDuration  MetricName = "request_duration_seconds"
	MetricResponseSuccessTotal MetricName = "response_success_total"
	MetricResponseFailTotal    MetricName = "response_fail_total"
	MetricAccessDecisionTotal  MetricName = "access_decision_total"
	MetricRateLimitTotal       MetricName = "rate_limited_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelOutcome  MetricLabelName = "outcome"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

// 列表查詢（QueryEngine）
type TraceListQueryMeta struct {
	Entity      string         `trace:"list.entity"`
	Page        int64          `trace:"list.page"`
	Limit       int64          `trace:"list.limit"`
	Sort        string         `trace:"list.sort,omitempty"`
	SearchTerm  string         `trace:"list.search_term,omitempty"`
	Filter      map[string]any `trace:"filter,omitempty"`
	Total       int64          `trace:"result.total"`
	ResultCount int            `trace:"result.count"`
}

// 授權判斷
type TraceAccessMeta struct {
	UserID   string `trace:"auth.user_id,omitempty"`
	Username string `trace:"auth.username,omitempty"`
	RoleID   string `trace:"auth.role_id,omitempty"`
	Resource string `trace:"access.resource"`
	Outcome  string `trace:"access.outcome"`
	Reason   string `trace:"access.reason"`
}

// 供 Redis 限流 Consume 使用
type TraceRateLimitMeta struct {
	Subject   string `trace:"rl.subject"`
	Limit     int    `trace:"rl.limit_count"`
	WindowSec int64  `trace:"rl.window_sec"`
	Remaining int    `trace:"rl.remaining,omitempty"`
	TTL       int64  `trace:"rl.ttl_sec,omitempty"`
	Op        string `trace:"rl.op"` // "consume" / "get"
}

type TraceRateLimitMiddlewareMeta struct {
	Subject     string `trace:"ratelimit.subject"`
	ConfigLimit int    `trace:"ratelimit.config.limit"`
	Remaining   int    `trace:"ratelimit.remaining"`
	TTLSeconds  int64  `trace:"ratelimit.ttl_sec"`
	Blocked     bool   `trace:"ratelimit.blocked"`
	FailOpen    bool   `trace:"ratelimit.fail_open"`
}

type TraceAuthMiddlewareMeta struct {
	Where    string `trace:"auth.where"`
	ClientIP string `trace:"net.peer.ip,omitempty"`
	UserID   string `trace:"auth.user_id,omitempty"`
	RoleID   string `trace:"auth.role_id,omitempty"`
	Status   string `trace:"auth.status,omitempty"`
}

type TraceUserMiddlewareMeta struct {
	UserID          string `trace:"auth.user_id,omitempty"`
	UserStatus      string `trace:"auth.user_status,omitempty"`
	UpdatedLastSeen bool   `trace:"user.updated_last_seen"`
	Status          string `trace:"auth.status,omitempty"`
}

// 寫入路徑（角色/資源/權限/使用者）
type TraceWriteMeta struct {
	Entity        string `trace:"entity"`
	Op            string `trace:"op"`
	ID            string `trace:"entity.id,omitempty"`
	Actor         string `trace:"actor.id,omitempty"`
	MatchedCount  int64  `trace:"mongo.matched_count,omitempty"`
	ModifiedCount int64  `trace:"mongo.modified_count,omitempty"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}
