package app

const (
	Name           = "camsync"
	SourceURL      = "https://git.skobk.in/skobkin/camsync"
	ConfigFilename = "config.yaml"
	LogFilename    = "camsync.log"
)
