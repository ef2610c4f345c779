// Package config loads client settings from a .env file, an optional TOML
// file and the environment, in increasing order of precedence.
//
// Recognised environment variables:
//
//	OPENCHAT_API_KEY            API key (falls back to OPENAI_API_KEY)
//	OPENCHAT_BASE_URL           full chat endpoint URL
//	OPENCHAT_MODEL              default model
//	OPENCHAT_SYSTEM_MESSAGE     system message for new sessions
//	OPENCHAT_TIMEOUT            per-call timeout, e.g. "90s"
//	OPENCHAT_STREAM_QUEUE_SIZE  SSE write queue limit in bytes
//	OPENCHAT_ALLOW_TRUNCATED    accept streams that end without [DONE]
//	OPENCHAT_CONFIG_FILE        TOML file to read before the environment
package config
