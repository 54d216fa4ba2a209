package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of days a /plan command covers by default
	DefaultPlanDays int
	// Number of weak topics shown by /weak
	WeakTopicsShown int
	// Number of items in a /practice queue
	PracticeQueueSize int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DefaultPlanDays:   14,
		WeakTopicsShown:   10,
		PracticeQueueSize: 10,
	}
}
