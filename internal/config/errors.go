package config

const (
	// Response messages
	MsgNotFound            = "Not Found"
	MsgInternalServerError = "Internal Server Error"

	// Startup errors
	ErrLoadConfig   = "Error loading config"
	ErrOpenStore    = "Error opening store"
	ErrStartGops    = "Error starting gops agent"
	ErrServerFailed = "Server failed"
)
