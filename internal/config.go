package internal

import (
	"fmt"
	"time"
)

type Config struct {
	APIBaseURL  string        `env:"API_BASE_URL,required=true"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=10s"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	LogLevel string `env:"LOG_LEVEL,required=true"`

	NotificationPollInterval time.Duration `env:"NOTIFICATION_POLL_INTERVAL,default=5s"`
	ChatPollInterval         time.Duration `env:"CHAT_POLL_INTERVAL,default=3s"`
	HeartbeatInterval        time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
	RestartInterval          time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	CensoredWordsPath string `env:"CENSORED_WORDS_PATH"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`

	DebugPort int `env:"DEBUG_PORT,default=8081"`
}

// CharacterRune validates that the configured replacement is exactly
// one character and returns it as a rune.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
