package logging

const (
	emptyString = ""

	defaultLogFileExt = ".log"
	defaultExeName    = "app"
)

const (
	errMsgNilConfig       = "Logging config is nil."
	errMsgNilService      = "Logger service is nil."
	errMsgConfigNotSet    = "Logging config is not set."
	errMsgConfigInvalid   = "Logging configuration is invalid."
	errMsgWorkingDirEmpty = "Working dir has not been set."
	errMsgNoChannels      = "No logging channels enabled."
	errMsgBadLevel        = "Invalid logging level."
	errMsgLogDir          = "Failed to create logs directory."
	errMsgExeName         = "Failed to get executable name."
	errMsgEmptySinkPath   = "Log sink path is empty."
	errMsgOpenSink        = "Failed to open log file."
	errMsgCloseSink       = "Failed to close log file."
	errMsgShutdownTimeout = "Log sink did not quiesce before the shutdown deadline."
	errMsgSyncTimeout     = "Log sink did not flush before the deadline."
	errMsgSyncFailed      = "Log sink flush failed."
)
