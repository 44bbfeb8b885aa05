package config

import "os"

const (
	emptyString = ""

	filePerm os.FileMode = 0o644
	dirPerm  os.FileMode = 0o755
)

const (
	errMsgNilFile       = "Config file is nil."
	errMsgNilSerializer = "Config serializer is not set."
	errMsgEmptyPath     = "Config path is empty."
	errMsgOpen          = "Failed to open config file."
	errMsgRead          = "Failed to read config file."
	errMsgUnserialize   = "Failed to parse config content."
	errMsgSerialize     = "Failed to serialize config."
	errMsgWrite         = "Failed to write config file."
	errMsgInvalid       = "Configuration is invalid."
	errMsgUnknownCodec  = "No codec registered for config file extension."
)
