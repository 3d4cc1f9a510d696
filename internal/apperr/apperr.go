package apperr

// Kind 固定错误枚举：每个 Kind 对应稳定的 code 与 (message, json_status, http_status)
type Kind int

const (
	InvalidName Kind = iota + 1
	InvalidID
	NoUser
	ChannelExists
	NotChannelOwner
	ChannelNotFound
	SelfInvite
	AlreadyInvited
	BadSecret
	BadEncode
	MissingArg
	InvalidArg
	NotificationNotFound
	InternalDB
	AuthFailed
	EmailUsed
	BadName
	InvalidEmail
	InvalidPass
	InvalidRange
	RateLimited
)

type def struct {
	code       string
	message    string
	jsonStatus int
	httpStatus int
}

// json_status 与 http_status 多数一致；BadSecret 与 AuthFailed 是历史遗留的不对称
var table = map[Kind]def{
	InvalidName:          {"INVALID_NAME", "No channel name given", 400, 400},
	InvalidID:            {"INVALID_ID", "Invalid channel id", 400, 400},
	NoUser:               {"NO_USER", "Could not identify user", 400, 400},
	ChannelExists:        {"CHANNEL_EXISTS", "Channel already exists", 400, 400},
	NotChannelOwner:      {"NOT_CHANNEL_OWNER", "User does not own channel", 403, 403},
	ChannelNotFound:      {"CHANNEL_NOT_FOUND", "No channel found for this user", 404, 404},
	SelfInvite:           {"SELF_INVITE", "Cannot invite self to channel", 400, 400},
	AlreadyInvited:       {"ALREADY_INVITED", "User is already in channel", 400, 400},
	BadSecret:            {"BAD_SECRET_RESPONSE", "Incorrect backend auth token", 500, 403},
	BadEncode:            {"BAD_ENCODE", "Could not decode request", 400, 400},
	MissingArg:           {"MISSING_ARG", "Required argument missing", 400, 400},
	InvalidArg:           {"INVALID_ARG", "Could not parse argument", 400, 400},
	NotificationNotFound: {"NOTIFICATION_DOES_NOT_EXIST", "No such notification", 404, 404},
	InternalDB:           {"INTERNAL_DB_ERR", "Internal database error", 500, 500},
	AuthFailed:           {"AUTH_FAILED", "Cannot authenticate account", 403, 200},
	EmailUsed:            {"EMAIL_USED", "Email address already registered", 400, 400},
	BadName:              {"BAD_NAME", "Invalid user name", 400, 400},
	InvalidEmail:         {"INVALID_EMAIL", "Invalid email address", 400, 400},
	InvalidPass:          {"INVALID_PASS", "No password given", 400, 400},
	InvalidRange:         {"INVALID_RANGE", "Date range too large", 400, 400},
	RateLimited:          {"RATE_LIMITED", "Too many requests", 429, 429},
}

// Error 使 Kind 满足 error，service 层直接 return Kind
func (k Kind) Error() string { return k.Code() + ": " + k.Message() }

func (k Kind) Code() string {
	if d, ok := table[k]; ok {
		return d.code
	}
	return "INTERNAL_DB_ERR"
}

func (k Kind) Message() string {
	if d, ok := table[k]; ok {
		return d.message
	}
	return table[InternalDB].message
}

// JSONStatus 返回 envelope 内的 status 字段
func (k Kind) JSONStatus() int {
	if d, ok := table[k]; ok {
		return d.jsonStatus
	}
	return 500
}

// HTTPStatus 返回实际 HTTP 状态码
func (k Kind) HTTPStatus() int {
	if d, ok := table[k]; ok {
		return d.httpStatus
	}
	return 500
}
