package sync

// Config holds configuration for the sync orchestrator.
type Config struct {
	// ItemPauseMillis is the pause between consecutive item applies.
	// Keeps sustained write pressure on the target store low on top of
	// the client's request throttle.
	ItemPauseMillis int `mapstructure:"item_pause_millis" default:"100"`
}
