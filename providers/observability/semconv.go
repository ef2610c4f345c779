package observability

// --- Session Attributes ---

const (
	// AttrSessionID is the unique identifier of a chat session
	AttrSessionID = "session.id"

	// AttrRequestID is the unique identifier of one send
	AttrRequestID = "request.id"

	// AttrRequestTemporary marks a send excluded from history
	AttrRequestTemporary = "request.temporary"

	// AttrRequestStreaming marks a streaming send
	AttrRequestStreaming = "request.streaming"

	// AttrRequestMessagesCount is the number of messages in the outbound body
	AttrRequestMessagesCount = "request.messages_count"

	// AttrResponseContent is the final assistant content (truncated)
	AttrResponseContent = "response.content"

	// AttrResponseContentLength is the length of the final assistant content
	AttrResponseContentLength = "response.content_length"
)

// --- LLM Attributes ---

const (
	// AttrLLMModel is the model identifier taken from the session config
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the chat endpoint path
	AttrLLMEndpoint = "llm.endpoint"
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensKind labels token metrics: prompt or completion
	AttrLLMTokensKind = "llm.tokens.kind" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- SSE Attributes ---

const (
	// AttrSSEFragments is the number of fragments decoded for one stream
	AttrSSEFragments = "sse.fragments"

	// AttrSSEReasoning marks a reasoning fragment
	AttrSSEReasoning = "sse.reasoning"

	// AttrSSEDecodeErrors is the number of fragments that failed to decode
	AttrSSEDecodeErrors = "sse.decode_errors"

	// AttrSSEDone reports whether the [DONE] terminator was seen
	AttrSSEDone = "sse.done"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Memory Attributes ---

const (
	// AttrMemoryAppended is the number of messages appended in one batch
	AttrMemoryAppended = "memory.appended"

	// AttrMemoryTotalMessages is the total number of messages in memory
	AttrMemoryTotalMessages = "memory.total_messages"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanSessionSend wraps one non-streaming send
	SpanSessionSend = "session.send"

	// SpanSessionStream wraps one streaming send, from request to finalisation
	SpanSessionStream = "session.stream"
)

// --- Event Names ---

const (
	EventHTTPRequestPrepared  = "http.request.prepared"
	EventHTTPResponseReceived = "http.response.received"
	EventHTTPStreamStarted    = "http.stream.started"
	EventHTTPRequestError     = "http.request.error"

	// EventSSEFragment marks one decoded assistant fragment
	EventSSEFragment = "sse.fragment"

	// EventSSEDecodeError marks a fragment that could not be decoded
	EventSSEDecodeError = "sse.decode_error"

	// EventMemoryAppend marks when messages are appended to history
	EventMemoryAppend = "memory.append"

	// EventMemoryClear marks when history is cleared
	EventMemoryClear = "memory.clear"
)

// --- Metric Names ---

const (
	// MetricSessionRequests counts sends, labelled with status
	MetricSessionRequests = "openchat.session.requests"

	// MetricSessionDuration is the histogram of send durations in milliseconds
	MetricSessionDuration = "openchat.session.duration_ms"

	// MetricSessionTokens counts tokens reported in usage, labelled with kind
	MetricSessionTokens = "openchat.session.tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// MetricSSEFragments counts decoded stream fragments
	MetricSSEFragments = "openchat.sse.fragments"

	// MetricSSEDecodeErrors counts fragments that failed to decode
	MetricSSEDecodeErrors = "openchat.sse.decode_errors"
)
